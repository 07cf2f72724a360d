// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/rentfusion/rentfusion/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
func Create(cfg *config.DB) string {
	switch cfg.GormEngine {
	case config.EngineMySQL:
		return MySQL(cfg)
	case config.EnginePostgres:
		return Postgres(cfg)
	default:
		return SQLite(cfg)
	}
}

// MySQL builds a go-sql-driver dsn, user:pass@tcp(host:port)/name?extras.
func MySQL(cfg *config.DB) string {
	extras := cfg.Extras
	if extras == "" {
		extras = "charset=utf8mb4&parseTime=True&loc=UTC"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		extras,
	)
}

// Postgres builds a libpq keyword/value dsn.
func Postgres(cfg *config.DB) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	parts := []string{
		"host=" + cfg.Host,
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
		"sslmode=" + sslMode,
		"TimeZone=UTC",
	}

	if cfg.Extras != "" {
		parts = append(parts, cfg.Extras)
	}

	return strings.Join(parts, " ")
}

// SQLite returns the database file, or an in-memory database when no name is set.
func SQLite(cfg *config.DB) string {
	if cfg.Name == "" {
		return ":memory:"
	}

	if cfg.Extras != "" {
		return cfg.Name + "?" + cfg.Extras
	}

	return cfg.Name
}
