package open

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

func TestDialector(t *testing.T) {
	for _, engine := range []string{"", config.EngineSQLite, config.EngineMySQL, config.EnginePostgres} {
		d, err := Dialector(&config.DB{GormEngine: engine, Host: "localhost", Port: 1, Name: "rf"})
		require.NoError(t, err, engine)
		assert.NotNil(t, d)
	}

	_, err := Dialector(&config.DB{GormEngine: "oracle"})
	assert.Error(t, err)
}

func TestOpenAndMigrate(t *testing.T) {
	cfg := &config.DB{GormEngine: config.EngineSQLite, Name: filepath.Join(t.TempDir(), "rf.db")}

	db, err := DB(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	u := models.NewUser("a@example.com", "A", models.AuthProviderLocal)
	require.NoError(t, db.Create(u).Error)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "UTC", u.CreatedAt.Location().String())
}

func TestOpenMemory(t *testing.T) {
	db, err := DB(&config.DB{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.Property{}))
}
