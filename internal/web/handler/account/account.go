// Package account serves registration, sign-in and the account settings
// under /api/auth.
package account

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/session"
)

// Route paths below /api.
const (
	Path               = "/auth"
	RegisterPath       = Path + "/register"
	LoginPath          = Path + "/login"
	SignOutPath        = Path + "/signout"
	MePath             = Path + "/me"
	DeleteAccountPath  = Path + "/delete-account"
	ChangePasswordPath = Path + "/change-password"
	TOTPEnrollPath     = Path + "/totp/enroll"
	TOTPConfirmPath    = Path + "/totp/confirm"
	TOTPDisablePath    = Path + "/totp/disable"
)

// Service is the account handler service.
type Service struct {
	cfg  *config.Config
	auth *auth.Service
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	FullName string `json:"fullName" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

// Init registers the account routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.Limiter == nil {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg
	s.auth = deps.Auth

	requireUser := auth.RequireUser(deps.Auth)

	router.Post(RegisterPath, deps.Limiter.Middleware(ratelimit.RouteRegister), s.Register)
	router.Post(LoginPath, deps.Limiter.Middleware(ratelimit.RouteLogin), s.Login)
	router.Post(SignOutPath, s.SignOut)
	router.Get(MePath, requireUser, s.Me)
	router.Delete(DeleteAccountPath, requireUser, s.DeleteAccount)
	router.Post(ChangePasswordPath, requireUser, s.ChangePassword)
	router.Post(TOTPEnrollPath, requireUser, s.EnrollTOTP)
	router.Post(TOTPConfirmPath, requireUser, s.ConfirmTOTP)
	router.Post(TOTPDisablePath, requireUser, s.DisableTOTP)

	return nil
}

// Register creates a local account and signs it in.
func (s *Service) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	u, err := s.auth.Local.Register(req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			return handler.JSONError(c, fiber.StatusConflict, "User with this email already exists")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
		}

		return err
	}

	log.Info().Str("user_id", u.ID).Msg("user registered")

	return s.signIn(c, fiber.StatusCreated, u)
}

// Login checks the credentials and the second factor.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	u, err := s.auth.Local.Authenticate(req.Email, req.Password, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTOTPRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":        "Two-factor code required",
				"totpRequired": true,
			})
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidTOTP):
			log.Warn().Str("email", req.Email).Msg("failed sign-in")

			return handler.JSONError(c, fiber.StatusUnauthorized, "Invalid email or password")
		}

		return err
	}

	log.Info().Str("user_id", u.ID).Msg("user signed in")

	return s.signIn(c, fiber.StatusOK, u)
}

func (s *Service) signIn(c *fiber.Ctx, status int, u *models.User) error {
	in, err := s.auth.StartSession(u)
	if err != nil {
		return err
	}

	SetSessionCookie(c, s.cfg, in.SessionID)

	return c.Status(status).JSON(in)
}

// SetSessionCookie writes the HTTP-only session cookie.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.Auth.SessionTTL / time.Second),
		Secure:   cfg.Webserver.CookieSecure && !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SignOut drops the session. It succeeds for anonymous callers too.
func (s *Service) SignOut(c *fiber.Ctx) error {
	if err := session.Delete(c.Cookies(session.CookieName)); err != nil {
		log.Warn().Err(err).Msg("failed to delete session")
	}

	c.ClearCookie(session.CookieName)

	return c.JSON(fiber.Map{"success": true})
}

// Me returns the caller with its profile and tier limits.
func (s *Service) Me(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    u.ID,
			"email": u.Email,
		},
		"profile": u,
		"tier":    u.EffectiveTier(time.Now()),
		"limits":  s.auth.Limits(u),
	})
}

// DeleteAccount removes the caller and everything it owns, then signs out.
func (s *Service) DeleteAccount(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)

	if err := s.auth.DeleteAccount(u.ID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "User not found")
		}

		return err
	}

	log.Info().Str("user_id", u.ID).Msg("account deleted")

	_ = session.Delete(c.Cookies(session.CookieName))
	c.ClearCookie(session.CookieName)

	return c.JSON(fiber.Map{"success": true})
}

// ChangePassword replaces the password of a local account.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	err := s.auth.Local.ChangePassword(auth.CurrentUser(c).ID, req.OldPassword, req.NewPassword)

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, auth.ErrInvalidOldPassword):
		return handler.JSONError(c, fiber.StatusUnauthorized, "Invalid old password")
	case errors.Is(err, auth.ErrPasswordNotSet), errors.Is(err, auth.ErrWeakPassword):
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	return err
}

// EnrollTOTP starts the second factor setup.
func (s *Service) EnrollTOTP(c *fiber.Ctx) error {
	e, err := s.auth.Local.EnrollTOTP(auth.CurrentUser(c).ID, s.auth.TOTPIssuer)
	if err != nil {
		if errors.Is(err, auth.ErrTOTPAlreadyEnabled) {
			return handler.JSONError(c, fiber.StatusConflict, err.Error())
		}

		return err
	}

	return c.JSON(e)
}

// ConfirmTOTP enables the second factor.
func (s *Service) ConfirmTOTP(c *fiber.Ctx) error {
	var req codeRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	return s.totpResult(c, s.auth.Local.ConfirmTOTP(auth.CurrentUser(c).ID, req.Code))
}

// DisableTOTP turns the second factor off.
func (s *Service) DisableTOTP(c *fiber.Ctx) error {
	var req codeRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	return s.totpResult(c, s.auth.Local.DisableTOTP(auth.CurrentUser(c).ID, req.Code))
}

func (s *Service) totpResult(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, auth.ErrInvalidTOTP):
		return handler.JSONError(c, fiber.StatusUnauthorized, "Invalid two-factor code")
	case errors.Is(err, auth.ErrTOTPNotEnrolled):
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	return err
}
