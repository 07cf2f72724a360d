// Package matches serves the property matches of a user.
package matches

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/match"
	"github.com/rentfusion/rentfusion/internal/pagination"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the matches route below /api.
const Path = "/matches"

// Service is the matches handler service.
type Service struct {
	db *gorm.DB
}

// Init registers the match routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB

	g := router.Group(Path, auth.RequireUser(deps.Auth))
	g.Get(handler.RootPath, s.List)
	g.Post("/:id/viewed", s.MarkViewed)

	return nil
}

// List returns a page of matches, newest first. ?unviewed=true limits
// it to new matches.
func (s *Service) List(c *fiber.Ctx) error {
	items, info, err := match.List(s.db, auth.CurrentUser(c).ID, c.QueryBool("unviewed"), pagination.ParseQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": items, "pagination": info})
}

// MarkViewed flags a match as seen.
func (s *Service) MarkViewed(c *fiber.Ctx) error {
	if err := match.MarkViewed(s.db, auth.CurrentUser(c).ID, c.Params("id")); err != nil {
		if errors.Is(err, match.ErrMatchNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Match not found")
		}

		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
