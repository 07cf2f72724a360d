// Package fiber provides a zerolog based access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// UserIDLocal names the fiber local holding the authenticated user id.
	UserIDLocal string

	// Output overrides the console writer, used in tests.
	Output io.Writer
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	CacheControlError: "max-age=0",
	CheckAliveURI:     "/api/health",
	UserIDLocal:       "user_id",
}

var (
	requests     *prometheus.CounterVec //nolint:gochecknoglobals
	requestsOnce sync.Once              //nolint:gochecknoglobals
)

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	if cfg.CheckAliveURI == "" {
		cfg.CheckAliveURI = ConfigDefault.CheckAliveURI
	}

	if cfg.UserIDLocal == "" {
		cfg.UserIDLocal = ConfigDefault.UserIDLocal
	}

	return cfg
}

func requestCounter() *prometheus.CounterVec {
	requestsOnce.Do(func() {
		requests = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentfusion_http_requests_total",
			Help: "Number of handled http requests by route and status.",
		}, []string{"method", "route", "status"})
	})

	return requests
}

// New creates a new fiber access logging middleware using zerolog.
func New(config ...Config) fiber.Handler {
	var (
		writers    []io.Writer
		cfg        = configDefault(config...)
		once       sync.Once
		errHandler fiber.ErrorHandler
		counter    = requestCounter()
	)

	if cfg.Config.File.Enabled {
		if w := newRollingAccessFile(&cfg.Config); w != nil {
			writers = append(writers, w)
		}
	}

	switch {
	case cfg.Output != nil:
		writers = append(writers, cfg.Output)
	case cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole:
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLog := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start)
		status := ctx.Response().StatusCode()

		counter.WithLabelValues(ctx.Method(), ctx.Route().Path, strconv.Itoa(status)).Inc()

		if cfg.Config.DisableCheckAlive && ctx.Path() == cfg.CheckAliveURI {
			return nil
		}

		// ctx.Path() keeps the path as requested, fasthttp normalizes the URI.
		p := ctx.Path()
		if qs := ctx.Request().URI().QueryString(); len(qs) > 0 {
			p += "?" + string(qs)
		}

		entry := accessLog.Log().
			Str("ip", ctx.IP()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("uri", p).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent))

		if uid, ok := ctx.Locals(cfg.UserIDLocal).(string); ok && uid != "" {
			entry = entry.Str("user_id", uid)
		}

		if chainErr != nil {
			entry = entry.Err(chainErr)
		}

		entry.Send()

		return nil
	}
}

func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return logger.NewRollingFile(cfg.File.Path, cfg.File.Access())
}
