package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/gofiber/storage/redis/v3"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/dsn"
)

const (
	defaultTable      = "rentfusion_storage"
	defaultGCInterval = 10 * time.Second
)

// NewStorage opens the key value storage named by cfg.Backend. The sql
// backends reuse the connection settings of the main database.
func NewStorage(cfg *config.Cache, db *config.DB) (fiber.Storage, error) {
	gc := cfg.GCInterval
	if gc == 0 {
		gc = defaultGCInterval
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}

	switch cfg.Backend {
	case "", "memory":
		return memory.New(memory.Config{GCInterval: gc}), nil
	case "redis":
		return redis.New(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			Database: cfg.Redis.Database,
		}), nil
	case config.EnginePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.Postgres(db),
			Table:         table,
			GCInterval:    gc,
		}), nil
	case config.EngineMySQL:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.MySQL(db),
			Table:         table,
			GCInterval:    gc,
		}), nil
	default:
		return nil, ErrUnsupportedBackend
	}
}
