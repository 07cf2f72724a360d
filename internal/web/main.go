// Package web assembles the fiber app serving the rentfusion api.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/config"
	fiberlogger "github.com/rentfusion/rentfusion/internal/logger/adapter/fiber"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/handler/account"
	aihandler "github.com/rentfusion/rentfusion/internal/web/handler/ai"
	"github.com/rentfusion/rentfusion/internal/web/handler/applications"
	oidchandler "github.com/rentfusion/rentfusion/internal/web/handler/auth/oidc"
	"github.com/rentfusion/rentfusion/internal/web/handler/cron"
	"github.com/rentfusion/rentfusion/internal/web/handler/dashboard"
	"github.com/rentfusion/rentfusion/internal/web/handler/health"
	"github.com/rentfusion/rentfusion/internal/web/handler/matches"
	"github.com/rentfusion/rentfusion/internal/web/handler/notifications"
	"github.com/rentfusion/rentfusion/internal/web/handler/profile"
	"github.com/rentfusion/rentfusion/internal/web/handler/properties"
	"github.com/rentfusion/rentfusion/internal/web/handler/saved"
	"github.com/rentfusion/rentfusion/internal/web/handler/searchprofiles"
	stripehandler "github.com/rentfusion/rentfusion/internal/web/handler/stripe"
)

const defaultBodyLimit = 10 * 1024 * 1024

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Services returns every api handler in registration order.
func Services() []handler.Service {
	return []handler.Service{
		&health.Service{},
		&account.Service{},
		&oidchandler.Service{},
		&profile.Service{},
		&dashboard.Service{},
		&properties.Service{},
		&saved.Service{},
		&matches.Service{},
		&searchprofiles.Service{},
		&applications.Service{},
		&aihandler.Service{},
		&stripehandler.Service{},
		&notifications.Service{},
		&cron.Service{},
	}
}

// Addr returns the listen address from the webserver settings.
func Addr(cfg *config.Webserver) string {
	return cfg.Address + ":" + strconv.Itoa(cfg.Port)
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	doneFiber := make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("fiber listen error")
		}

		doneFiber <- err
	}()

	return <-doneFiber
}

// WaitShutdown blocks until SIGINT or SIGTERM and shuts the server down.
// Unless fast shutdown is set, the health check reports 503 for
// ShutDownTime seconds first so load balancers drain the instance.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// draining answers the health check with 503 once shutdown started.
func (s *Service) draining(c *fiber.Ctx) error {
	if !s.alive.Load() && c.Path() == handler.APIPath+health.Path {
		return handler.JSONError(c, fiber.StatusServiceUnavailable, "shutting down")
	}

	return c.Next()
}

// New creates the web service and registers every api handler.
func New(cfg *config.Config, deps *handler.Deps) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if err := deps.Check(); err != nil {
		return nil, err
	}

	bodyLimit := cfg.Webserver.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:          8192,
			AppName:                 cfg.Title,
			CaseSensitive:           true,
			Prefork:                 false,
			Immutable:               true,
			BodyLimit:               bodyLimit,
			ErrorHandler:            handler.ErrorHandler,
			EnableTrustedProxyCheck: len(cfg.Webserver.TrustedProxies) > 0,
			TrustedProxies:          cfg.Webserver.TrustedProxies,
			ProxyHeader:             proxyHeader(cfg),
		},
	)

	s := &Service{App: app, cfg: cfg, fastShutDown: cfg.DevMode}
	s.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: handler.APIPath + health.Path,
	}))
	app.Use(s.draining)

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group(handler.APIPath)

	for _, svc := range Services() {
		if err := svc.Init(api, deps); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func proxyHeader(cfg *config.Config) string {
	if len(cfg.Webserver.TrustedProxies) == 0 {
		return ""
	}

	return fiber.HeaderXForwardedFor
}
