package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/logger"
	adapter "github.com/rentfusion/rentfusion/internal/logger/adapter/fiber"
)

type accessLine struct {
	IP     string `json:"ip"`
	Status int    `json:"status"`
	URI    string `json:"uri"`
	Method string `json:"method"`
	Host   string `json:"host"`
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(adapter.New(cfg))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("hello test")
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")

		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/fail", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	return app
}

func request(t *testing.T, cfg adapter.Config, target string) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	cfg.Output = &buf

	resp, err := newApp(cfg).Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)

	return buf.String(), resp.StatusCode
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   accessLine
	}{
		{name: "root", target: "/", want: accessLine{Status: 200, URI: "/", Method: "GET", Host: "example.com"}},
		{name: "unknown path", target: "/no_path", want: accessLine{Status: 404, URI: "/no_path", Method: "GET", Host: "example.com"}},
		{name: "query string kept", target: "/?test=123", want: accessLine{Status: 200, URI: "/?test=123", Method: "GET", Host: "example.com"}},
		{name: "user id from locals", target: "/me", want: accessLine{Status: 204, URI: "/me", Method: "GET", Host: "example.com", UserID: "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, status := request(t, adapter.Config{}, tt.target)
			assert.Equal(t, tt.want.Status, status)

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(out), &got), out)

			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.UserID, got.UserID)
			assert.Equal(t, "0.0.0.0", got.IP)
		})
	}
}

func TestNewChainError(t *testing.T) {
	out, status := request(t, adapter.Config{}, "/fail")
	assert.Equal(t, fiber.StatusTeapot, status)

	var got accessLine
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "short and stout", got.Error)
}

func TestNewSkipsCheckAlive(t *testing.T) {
	out, status := request(t, adapter.Config{Config: logger.Log{DisableCheckAlive: true}}, "/api/health")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, out)

	out, _ = request(t, adapter.Config{}, "/api/health")
	assert.NotEmpty(t, out)
}

func TestNewNext(t *testing.T) {
	cfg := adapter.Config{Next: func(*fiber.Ctx) bool { return true }}

	out, status := request(t, cfg, "/")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, out)
}
