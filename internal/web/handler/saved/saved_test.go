package saved

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func TestSaveListUnsave(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("s@example.com", models.TierFree)
	p := dbtest.CreateProperty(t, env.DB, "s-1", "Delft", 950)

	resp := env.Request(http.MethodPost, "/api/saved/"+p.ID, map[string]string{"notes": "near station"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.Request(http.MethodPost, "/api/saved/"+p.ID, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var again models.SavedProperty
	handlertest.Decode(t, resp, &again)
	assert.Equal(t, "near station", again.Notes)

	resp = env.Request(http.MethodGet, "/api/saved", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []models.SavedProperty `json:"items"`
	}
	handlertest.Decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].Property)
	assert.Equal(t, "Delft", list.Items[0].Property.City)

	resp = env.Request(http.MethodDelete, "/api/saved/"+p.ID, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.Request(http.MethodDelete, "/api/saved/"+p.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveUnknownProperty(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("s@example.com", models.TierFree)

	resp := env.Request(http.MethodPost, "/api/saved/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/saved", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
