package oidc

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/handler/account"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = "/auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = "/auth/callback"

	// StateTTL bounds the time between login and callback.
	StateTTL = 5 * time.Minute

	statePrefix = "oidc_state:"
)

// Provider is the part of auth.OIDCProvider the handlers use.
type Provider interface {
	GetAuthURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.Identity, error)
}

// Service is the OIDC handler service.
type Service struct {
	// Provider replaces deps.OIDC when set.
	Provider Provider

	cfg     *config.Config
	db      *gorm.DB
	auth    *auth.Service
	storage fiber.Storage
}

// Init registers the OIDC routes. Without a provider nothing is registered.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.Cache == nil {
		return handler.ErrNilDeps
	}

	if s.Provider == nil && deps.OIDC != nil {
		s.Provider = deps.OIDC
	}

	if s.Provider == nil {
		log.Info().Msg("OIDC authentication is disabled by configuration")

		return nil
	}

	s.cfg = deps.Cfg
	s.db = deps.DB
	s.auth = deps.Auth
	s.storage = deps.Cache.Storage()

	router.Get(LoginPath, s.Login)
	router.Get(CallbackPath, s.Callback)

	log.Info().Msg("OIDC authentication provider initialized")

	return nil
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	state := auth.GenerateStateToken()

	if err := s.storage.Set(statePrefix+state, []byte{1}, StateTTL); err != nil {
		log.Error().Err(err).Msg("failed to store state token")

		return handler.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Redirect(s.Provider.GetAuthURL(state))
}

// Callback handles the OIDC callback. Every failure lands on the login page.
func (s *Service) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("missing code or state in OIDC callback")

		return s.fail(c)
	}

	if !s.consumeState(state) {
		log.Error().Str("state", state).Msg("invalid or expired state token")

		return s.fail(c)
	}

	id, err := s.Provider.HandleCallback(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")

		return s.fail(c)
	}

	u, err := auth.UpsertOAuthUser(s.db, id)
	if err != nil {
		log.Error().Err(err).Str("email", id.Email).Msg("failed to provision OIDC user")

		return s.fail(c)
	}

	in, err := s.auth.StartSession(u)
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")

		return s.fail(c)
	}

	account.SetSessionCookie(c, s.cfg, in.SessionID)

	log.Info().Str("user_id", u.ID).Msg("user signed in via OIDC")

	return c.Redirect(s.cfg.Webserver.AppURL + "/dashboard")
}

func (s *Service) consumeState(state string) bool {
	key := statePrefix + state

	v, err := s.storage.Get(key)
	if err != nil || len(v) == 0 {
		return false
	}

	_ = s.storage.Delete(key)

	return true
}

func (s *Service) fail(c *fiber.Ctx) error {
	return c.Redirect(s.cfg.Webserver.AppURL + "/login?error=auth_failed")
}
