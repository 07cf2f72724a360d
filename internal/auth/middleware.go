package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/session"
)

// Locals keys set by RequireUser.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

// RequireUser creates Fiber middleware that rejects anonymous callers with 401.
func RequireUser(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := authService.ResolveUser(c.Get(fiber.HeaderAuthorization), c.Cookies(session.CookieName))
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrUserNotFound) {
				log.Error().Err(err).Msg("failed to resolve user")

				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
			}

			return unauthorized(c)
		}

		c.Locals(LocalUser, u)
		c.Locals(LocalUserID, u.ID)

		return c.Next()
	}
}

// OptionalUser sets the caller in the locals when one can be resolved and never rejects.
func OptionalUser(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := authService.ResolveUser(c.Get(fiber.HeaderAuthorization), c.Cookies(session.CookieName))
		if err == nil {
			c.Locals(LocalUser, u)
			c.Locals(LocalUserID, u.ID)
		}

		return c.Next()
	}
}

// CurrentUser returns the user set by RequireUser, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)

	return u
}

// RequireTier creates Fiber middleware that requires at least the given effective tier.
// It must run after RequireUser.
func RequireTier(minTier models.SubscriptionTier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return unauthorized(c)
		}

		if u.EffectiveTier(time.Now()).Rank() < minTier.Rank() {
			log.Warn().Str("user_id", u.ID).Str("required", string(minTier)).Msg("user lacks required tier")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":        "Upgrade required",
				"requiredTier": minTier,
			})
		}

		return c.Next()
	}
}

// RequireFeature creates Fiber middleware answering 403 with msg when the
// caller's tier lacks the feature. It must run after RequireUser.
func RequireFeature(f Feature, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return unauthorized(c)
		}

		if !HasFeature(u.EffectiveTier(time.Now()), f) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msg})
		}

		return c.Next()
	}
}

// IsCronRequest reports whether the request carries "Bearer <secret>".
// An empty secret never matches.
func IsCronRequest(c *fiber.Ctx, secret string) bool {
	if secret == "" {
		return false
	}

	got := []byte(c.Get(fiber.HeaderAuthorization))

	return subtle.ConstantTimeCompare(got, []byte("Bearer "+secret)) == 1
}

// RequireCronSecret creates Fiber middleware for scheduler and ingest callers.
// An empty secret rejects every request.
func RequireCronSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsCronRequest(c, secret) {
			return unauthorized(c)
		}

		return c.Next()
	}
}
