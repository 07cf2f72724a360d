package dashboard

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/controller/match"
	"github.com/rentfusion/rentfusion/internal/db/controller/saved"
	"github.com/rentfusion/rentfusion/internal/db/controller/searchprofile"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func TestStats(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, token := env.User("renter@example.com", models.TierBasic)

	sp := &models.SearchProfile{UserID: u.ID, Name: "Delft", Cities: []string{"Delft"}, IsActive: true}
	require.NoError(t, searchprofile.Create(env.DB, sp))
	require.NoError(t, searchprofile.Create(env.DB, &models.SearchProfile{UserID: u.ID, Name: "Off"}))

	p := dbtest.CreateProperty(t, env.DB, "p-1", "Delft", 900)
	require.NoError(t, match.Create(env.DB, &models.PropertyMatch{
		PropertyID: p.ID, SearchProfileID: sp.ID, UserID: u.ID, MatchScore: 60,
	}))

	_, _, err := saved.Save(env.DB, u.ID, p.ID, "")
	require.NoError(t, err)

	resp := env.Request(http.MethodGet, "/api/dashboard/stats", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st Stats
	handlertest.Decode(t, resp, &st)
	assert.Equal(t, Stats{ActiveSearches: 1, NewMatches: 1, SavedProperties: 1}, st)
}

func TestStatsRequiresUser(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})

	resp := env.Request(http.MethodGet, "/api/dashboard/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
