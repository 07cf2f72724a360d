// Package health reports whether the api and its providers are usable.
package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the health route below /api.
const Path = "/health"

const pingTimeout = 2 * time.Second

// Checks lists the individual probes.
type Checks struct {
	Database bool `json:"database"`
	Stripe   bool `json:"stripe"`
	OpenAI   bool `json:"openai"`
}

// Report is the health response.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Checks    Checks    `json:"checks"`
	Error     string    `json:"error,omitempty"`
}

// Service is the health handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Init registers the health route.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg
	s.db = deps.DB

	router.Get(Path, s.Get)

	return nil
}

// Get answers 200 when every check passes, 503 when one fails and 500 when
// the database handle is unusable.
func (s *Service) Get(c *fiber.Ctx) error {
	r := Report{
		Timestamp: time.Now().UTC(),
		Status:    "healthy",
		Checks: Checks{
			Stripe: s.cfg.Stripe.SecretKey != "",
			OpenAI: s.cfg.OpenAI.APIKey != "",
		},
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		r.Status = "unhealthy"
		r.Error = err.Error()

		return c.Status(fiber.StatusInternalServerError).JSON(r)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	r.Checks.Database = sqlDB.PingContext(ctx) == nil

	if !r.Checks.Database || !r.Checks.Stripe || !r.Checks.OpenAI {
		r.Status = "degraded"

		return c.Status(fiber.StatusServiceUnavailable).JSON(r)
	}

	return c.JSON(r)
}
