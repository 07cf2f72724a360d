package cron

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/backup"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	env := handlertest.New(t, func(c *config.Config) { c.Cron.BackupDir = dir }, &Service{})
	env.User("a@example.com", models.TierFree)

	resp := env.Request(http.MethodGet, "/api"+BackupPath, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api"+BackupPath, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+handlertest.CronSecret)

	resp = env.Do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sum backup.Summary
	handlertest.Decode(t, resp, &sum)
	assert.True(t, sum.Success)
	assert.Contains(t, sum.Tables, "users")
	assert.GreaterOrEqual(t, sum.TotalRecords, 1)
	require.NotEmpty(t, sum.File)

	_, err := os.Stat(sum.File)
	assert.NoError(t, err)
}

func TestInitNilDeps(t *testing.T) {
	s := &Service{}
	assert.ErrorIs(t, s.Init(nil, &handler.Deps{}), handler.ErrNilDeps)
}
