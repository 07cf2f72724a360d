package applications

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func TestApplicationLifecycle(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("a@example.com", models.TierBasic)
	_, otherToken := env.User("b@example.com", models.TierBasic)
	p := dbtest.CreateProperty(t, env.DB, "ap-1", "Utrecht", 1300)

	resp := env.Request(http.MethodPost, "/api/applications", map[string]string{"propertyId": p.ID}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var a models.Application
	handlertest.Decode(t, resp, &a)
	assert.Equal(t, models.ApplicationDraft, a.Status)
	assert.Nil(t, a.SubmittedAt)

	resp = env.Request(http.MethodPatch, "/api/applications/"+a.ID, map[string]string{"status": "submitted"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	handlertest.Decode(t, resp, &a)
	assert.Equal(t, models.ApplicationSubmitted, a.Status)
	assert.NotNil(t, a.SubmittedAt)

	resp = env.Request(http.MethodPatch, "/api/applications/"+a.ID, map[string]string{"status": "accepted", "notes": "viewing on monday"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	handlertest.Decode(t, resp, &a)
	assert.NotNil(t, a.ResponseReceivedAt)
	assert.Equal(t, "viewing on monday", a.Notes)

	resp = env.Request(http.MethodPatch, "/api/applications/"+a.ID, map[string]string{"status": "won"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.Request(http.MethodPatch, "/api/applications/"+a.ID, map[string]string{"status": "withdrawn"}, otherToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/applications?status=accepted", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []models.Application `json:"items"`
	}
	handlertest.Decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].Property)
	assert.Equal(t, "Utrecht", list.Items[0].Property.City)
}

func TestCreateRejects(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, token := env.User("a@example.com", models.TierBasic)

	resp := env.Request(http.MethodPost, "/api/applications", map[string]string{"propertyId": "missing"}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Request(http.MethodPost, "/api/applications", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/applications?status=lost", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
