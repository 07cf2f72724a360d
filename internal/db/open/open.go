// Package open connects gorm to the configured database engine.
package open

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/dsn"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/logger/adapter/stdlogger"
)

const slowQuery = 200 * time.Millisecond

// Dialector returns the gorm driver for cfg.GormEngine.
func Dialector(cfg *config.DB) (gorm.Dialector, error) {
	switch cfg.GormEngine {
	case config.EngineMySQL:
		return mysql.Open(dsn.MySQL(cfg)), nil
	case config.EnginePostgres:
		return postgres.Open(dsn.Postgres(cfg)), nil
	case config.EngineSQLite, "":
		return sqlite.Open(dsn.SQLite(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported gorm engine %q", cfg.GormEngine)
	}
}

// DB opens the database. Timestamps are stored in UTC and statements are
// logged through zerolog, all of them when cfg.Debug is set.
func DB(cfg *config.DB) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewComponent("gorm", zerolog.DebugLevel), gormlogger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// a second sqlite memory connection would open an empty database
	if cfg.GormEngine != config.EngineMySQL && cfg.GormEngine != config.EnginePostgres && cfg.Name == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
