package properties

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/controller/searchprofile"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

type pageResponse struct {
	Items      []models.Property `json:"items"`
	NextCursor string            `json:"nextCursor"`
	Pagination *struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

func cronRequest(env *handlertest.Env, body any) *http.Response {
	return env.Request(http.MethodPost, "/api/properties/ingest", body, handlertest.CronSecret)
}

func TestSearchIsCachedUntilIngest(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	dbtest.CreateProperty(t, env.DB, "a-1", "Amsterdam", 1500)
	dbtest.CreateProperty(t, env.DB, "u-1", "Utrecht", 1100)

	resp := env.Request(http.MethodGet, "/api/properties?city=amsterdam", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(CacheHeader))

	var page pageResponse
	handlertest.Decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, int64(1), page.Pagination.Total)

	resp = env.Request(http.MethodGet, "/api/properties?city=amsterdam", nil, "")
	assert.Equal(t, "HIT", resp.Header.Get(CacheHeader))

	resp = cronRequest(env, map[string]any{
		"source": "pararius", "external_id": "a-2", "title": "Loft", "city": "Amsterdam", "price": 1700,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/properties?city=amsterdam", nil, "")
	assert.Equal(t, "MISS", resp.Header.Get(CacheHeader))

	handlertest.Decode(t, resp, &page)
	assert.Len(t, page.Items, 2)
}

func TestSearchFiltersAndPaging(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	for i := range 5 {
		dbtest.CreateProperty(t, env.DB, fmt.Sprintf("r-%d", i), "Rotterdam", float64(900+i*100))
	}

	resp := env.Request(http.MethodGet, "/api/properties?city=Rotterdam&priceMax=1100&pageSize=2", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page pageResponse
	handlertest.Decode(t, resp, &page)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.NotEmpty(t, page.NextCursor)

	resp = env.Request(http.MethodGet, "/api/properties?city=Rotterdam&priceMax=1100&pageSize=2&cursor="+url.QueryEscape(page.NextCursor), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next pageResponse
	handlertest.Decode(t, resp, &next)
	assert.Len(t, next.Items, 1)
	assert.Nil(t, next.Pagination)

	resp = env.Request(http.MethodGet, "/api/properties?priceMin=2000&priceMax=1000", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/properties?priceMin=cheap", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGet(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	p := dbtest.CreateProperty(t, env.DB, "g-1", "Leiden", 1000)

	resp := env.Request(http.MethodGet, "/api/properties/"+p.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Property
	handlertest.Decode(t, resp, &got)
	assert.Equal(t, "Leiden", got.City)

	resp = env.Request(http.MethodGet, "/api/properties/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIngestMatchesProfiles(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, _ := env.User("seeker@example.com", models.TierBasic)
	require.NoError(t, searchprofile.Create(env.DB, &models.SearchProfile{
		UserID:               u.ID,
		Name:                 "Haarlem",
		Cities:               []string{"Haarlem"},
		IsActive:             true,
		NotificationsEnabled: true,
	}))

	listing := map[string]any{
		"source": "funda", "external_id": "h-1", "title": "Canal house", "city": "Haarlem", "price": 1400,
	}

	resp := cronRequest(env, listing)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res IngestResult
	handlertest.Decode(t, resp, &res)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, u.ID, res.Matches[0].UserID)
	assert.True(t, res.Created)
	assert.Len(t, env.Email.Sent, 1)

	// the same listing again updates and matches nothing new
	resp = cronRequest(env, listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	handlertest.Decode(t, resp, &res)
	assert.False(t, res.Created)
	assert.Empty(t, res.Matches)
}

func TestIngestRejects(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})

	resp := env.Request(http.MethodPost, "/api/properties/ingest", map[string]any{"source": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = cronRequest(env, map[string]any{"title": "No key", "city": "Delft", "price": 900})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = cronRequest(env, map[string]any{"source": "x", "external_id": "1", "city": "Delft"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
