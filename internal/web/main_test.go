package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func newService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()

	env := handlertest.New(t, mutate)

	s, err := New(env.Deps.Cfg, env.Deps)
	require.NoError(t, err)

	return s
}

func TestNewRegistersRoutes(t *testing.T) {
	s := newService(t, func(c *config.Config) {
		c.Metrics = config.Metrics{Enabled: true, Path: "/metrics"}
	})

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rentfusion_http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	s := newService(t, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDrainingHealthCheck(t *testing.T) {
	s := newService(t, nil)
	s.alive.Store(false)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	_, err = New(&config.Config{}, &handler.Deps{})
	assert.ErrorIs(t, err, handler.ErrNilDeps)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(&config.Webserver{Port: 8080}))
	assert.Equal(t, "127.0.0.1:9000", Addr(&config.Webserver{Address: "127.0.0.1", Port: 9000}))
}
