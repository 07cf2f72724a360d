// Package handler holds what the api handlers share: their dependencies,
// request binding and the JSON error handler.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/ai"
	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/billing"
	"github.com/rentfusion/rentfusion/internal/cache"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/matcher"
	"github.com/rentfusion/rentfusion/internal/notify"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/validation"
)

const (
	// APIPath prefixes every api route.
	APIPath = "/api"

	// RootPath is the root path of a route group.
	RootPath = "/"

	// ErrNilDepsMsg is used if the router or a required dependency is nil.
	ErrNilDepsMsg = "router, cfg or db is nil"
)

// ErrNilDeps is returned by Init when a required dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsMsg)

// Deps are the services handlers work with. OIDC is nil when disabled.
type Deps struct {
	Cfg     *config.Config
	DB      *gorm.DB
	Auth    *auth.Service
	OIDC    *auth.OIDCProvider
	Cache   *cache.Cache
	Limiter *ratelimit.Limiter
	AI      *ai.Service
	Billing *billing.Service
	Notify  *notify.Service
	Matcher *matcher.Matcher
}

// Check returns ErrNilDeps unless config and database are set.
func (d *Deps) Check() error {
	if d == nil || d.Cfg == nil || d.DB == nil {
		return ErrNilDeps
	}

	return nil
}

// Service is the interface for an api handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}

// ValidationError carries the invalid fields of a request body.
type ValidationError struct {
	Fields []validation.ErrorResponse
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Bind parses the JSON body into dst and validates it.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if errs := validation.Validate(dst); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	return nil
}

// JSONError writes {"error": msg} with status.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler renders handler errors as JSON. Unknown errors become a 500
// without details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		ve  *ValidationError
		ave *ai.ValidationError
		fe  *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": ve.Fields})
	case errors.As(err, &ave):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": ave.Fields})
	case errors.As(err, &fe):
		return JSONError(c, fe.Code, fe.Message)
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

	return JSONError(c, fiber.StatusInternalServerError, "Internal server error")
}
