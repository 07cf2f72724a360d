package searchprofiles

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func create(env *handlertest.Env, token string, body map[string]any) *http.Response {
	return env.Request(http.MethodPost, "/api/search-profiles", body, token)
}

func TestCRUD(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("sp@example.com", models.TierBasic)

	resp := create(env, token, map[string]any{
		"name":      "Amsterdam center",
		"cities":    []string{"Amsterdam"},
		"price_max": 1800,
		"user_id":   "someone-else",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var p models.SearchProfile
	handlertest.Decode(t, resp, &p)
	assert.NotEmpty(t, p.ID)
	assert.NotEqual(t, "someone-else", p.UserID)
	assert.True(t, p.IsActive)
	assert.True(t, p.NotificationsEnabled)

	resp = env.Request(http.MethodPatch, "/api/search-profiles/"+p.ID, map[string]any{"is_active": false, "price_min": 900}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.SearchProfile
	handlertest.Decode(t, resp, &updated)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Amsterdam center", updated.Name)
	require.NotNil(t, updated.PriceMin)
	assert.InDelta(t, 900, *updated.PriceMin, 0)

	resp = env.Request(http.MethodPatch, "/api/search-profiles/"+p.ID, map[string]any{"price_min": 2000}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/search-profiles/"+p.ID, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.Request(http.MethodDelete, "/api/search-profiles/"+p.ID, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/search-profiles/"+p.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTierLimit(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("free@example.com", models.TierFree)

	resp := create(env, token, map[string]any{"name": "First", "cities": []string{"Delft"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = create(env, token, map[string]any{"name": "Second", "cities": []string{"Leiden"}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]any
	handlertest.Decode(t, resp, &body)
	assert.InDelta(t, 1, body["limit"], 0)

	resp = env.Request(http.MethodGet, "/api/search-profiles", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []models.SearchProfile `json:"items"`
		Limit int                    `json:"limit"`
	}
	handlertest.Decode(t, resp, &list)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Limit)
}

func TestCreateValidation(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("v@example.com", models.TierPremium)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "no name", body: map[string]any{"cities": []string{"Delft"}}},
		{name: "inverted prices", body: map[string]any{"name": "x", "price_min": 2000, "price_max": 1000}},
		{name: "unknown channel", body: map[string]any{"name": "x", "notification_channels": []string{"fax"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, create(env, token, tt.body).StatusCode)
		})
	}
}
