// Package daemon wires the services of a running rentfusion instance.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/ai"
	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/backup"
	"github.com/rentfusion/rentfusion/internal/billing"
	"github.com/rentfusion/rentfusion/internal/cache"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/open"
	"github.com/rentfusion/rentfusion/internal/matcher"
	"github.com/rentfusion/rentfusion/internal/notify"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/web"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/session"
)

const sweepInterval = 5 * time.Minute

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	scheduler  *backup.Scheduler
	cancel     context.CancelFunc
}

// Start runs the background jobs and serves http until the server stops.
func (d *Daemon) Start() error {
	d.scheduler.Start()

	return d.webService.Start(web.Addr(&d.cfg.Webserver))
}

// Run starts the daemon and shuts it down on SIGINT or SIGTERM.
func (d *Daemon) Run() error {
	errCh := make(chan error, 1)

	go func() { errCh <- d.Start() }()

	go func() {
		d.webService.WaitShutdown()
		d.Stop()
	}()

	return <-errCh
}

// Stop stops the background jobs.
func (d *Daemon) Stop() {
	d.cancel()
	d.scheduler.Stop()
}

// Deps builds every service the handlers need on db.
func Deps(ctx context.Context, cfg *config.Config, db *gorm.DB) (*handler.Deps, error) {
	storage, err := cache.NewStorage(&cfg.Cache, &cfg.DB)
	if err != nil {
		return nil, err
	}

	session.Init(storage)

	c, err := cache.New(storage, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}

	n, err := notify.New(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	var gw billing.Gateway
	if cfg.Stripe.SecretKey != "" {
		gw = billing.NewStripeGateway(cfg.Stripe.SecretKey)
	} else {
		log.Warn().Msg("stripe secret key not set, checkout is disabled")
	}

	deps := &handler.Deps{
		Cfg:     cfg,
		DB:      db,
		Auth:    auth.NewService(db, &cfg.Auth),
		Cache:   c,
		Limiter: ratelimit.New(cfg.RateLimit),
		AI:      ai.New(&cfg.OpenAI),
		Billing: billing.New(db, gw, &cfg.Stripe, cfg.Webserver.AppURL, n),
		Notify:  n,
		Matcher: matcher.New(db, n),
	}

	if cfg.Auth.OIDC.Enabled {
		p, err := auth.NewOIDCProvider(ctx, cfg.Auth.OIDC)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		deps.OIDC = p
	}

	return deps, nil
}

// New opens and migrates the database and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := open.DB(&cfg.DB)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = open.Migrate(db); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = auth.SeedLimits(db); err != nil {
		return nil, err //nolint:wrapcheck
	}

	ctx, cancel := context.WithCancel(context.Background())

	deps, err := Deps(ctx, cfg, db)
	if err != nil {
		cancel()

		return nil, err
	}

	deps.Limiter.StartSweeper(ctx, sweepInterval)

	scheduler, err := backup.NewScheduler(db, cfg.Cron.BackupSchedule, cfg.Cron.BackupDir)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("invalid backup schedule: %w", err)
	}

	ws, err := web.New(cfg, deps)
	if err != nil {
		cancel()

		return nil, err //nolint:wrapcheck
	}

	return &Daemon{
		cfg:        cfg,
		webService: ws,
		scheduler:  scheduler,
		cancel:     cancel,
	}, nil
}
