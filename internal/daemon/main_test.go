package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/web"
)

func TestDeps(t *testing.T) {
	cfg := &config.Config{Title: "RentFusion"}
	db := dbtest.Open(t)

	deps, err := Deps(context.Background(), cfg, db)
	require.NoError(t, err)
	require.NoError(t, deps.Check())

	assert.Nil(t, deps.OIDC)
	assert.NotNil(t, deps.Billing)
	assert.NotNil(t, deps.Matcher)

	_, err = web.New(cfg, deps)
	assert.NoError(t, err)
}

func TestDepsUnsupportedCache(t *testing.T) {
	cfg := &config.Config{Cache: config.Cache{Backend: "etcd"}}

	_, err := Deps(context.Background(), cfg, dbtest.Open(t))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Title: "RentFusion",
		DB:    config.DB{GormEngine: config.EngineSQLite},
		Cron:  config.Cron{BackupSchedule: "0 3 * * *"},
	}

	d, err := New(cfg)
	require.NoError(t, err)

	d.Stop()

	_, err = New(nil)
	assert.Error(t, err)

	cfg.Cron.BackupSchedule = "every day"
	_, err = New(cfg)
	assert.Error(t, err)
}
