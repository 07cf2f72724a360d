// Package searchprofiles serves the saved searches of a user.
package searchprofiles

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/searchprofile"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/validation"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the search profile route below /api.
const Path = "/search-profiles"

var channels = []string{ //nolint:gochecknoglobals
	models.ChannelEmail, models.ChannelPush, models.ChannelSMS, models.ChannelTelegram, models.ChannelInApp,
}

// Service is the search profile handler service.
type Service struct {
	db   *gorm.DB
	auth *auth.Service
}

// Init registers the search profile routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.auth = deps.Auth

	g := router.Group(Path, auth.RequireUser(deps.Auth))
	g.Get(handler.RootPath, s.List)
	g.Post(handler.RootPath, s.Create)
	g.Get("/:id", s.Get)
	g.Patch("/:id", s.Update)
	g.Delete("/:id", s.Delete)

	return nil
}

// List returns the profiles of the caller.
func (s *Service) List(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)

	profiles, err := searchprofile.List(s.db, u.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": profiles, "limit": s.auth.Limits(u).SearchProfiles})
}

// Create stores a new profile within the tier limit.
func (s *Service) Create(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)

	limit := s.auth.Limits(u).SearchProfiles

	n, err := searchprofile.Count(s.db, u.ID)
	if err != nil {
		return err
	}

	if !auth.Allows(limit, n) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Search profile limit reached",
			"limit": limit,
		})
	}

	p := models.SearchProfile{IsActive: true, NotificationsEnabled: true}
	if err = c.BodyParser(&p); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	p.Base = models.Base{}
	p.UserID = u.ID

	if msg := check(&p); msg != "" {
		return handler.JSONError(c, fiber.StatusBadRequest, msg)
	}

	if err = searchprofile.Create(s.db, &p); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Get returns one profile.
func (s *Service) Get(c *fiber.Ctx) error {
	p, err := searchprofile.Get(s.db, auth.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}

	return c.JSON(p)
}

// Update applies the fields present in the body.
func (s *Service) Update(c *fiber.Ctx) error {
	p, err := searchprofile.Get(s.db, auth.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}

	base, userID := p.Base, p.UserID

	if err = c.BodyParser(p); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	p.Base, p.UserID = base, userID

	if msg := check(p); msg != "" {
		return handler.JSONError(c, fiber.StatusBadRequest, msg)
	}

	if err = searchprofile.Save(s.db, p); err != nil {
		return err
	}

	return c.JSON(p)
}

// Delete removes a profile and its matches.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := searchprofile.Delete(s.db, auth.CurrentUser(c).ID, c.Params("id")); err != nil {
		return notFound(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func notFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, searchprofile.ErrProfileNotFound) {
		return handler.JSONError(c, fiber.StatusNotFound, "Search profile not found")
	}

	return err
}

// check returns the first problem of p, or "".
func check(p *models.SearchProfile) string {
	p.Name = strings.TrimSpace(p.Name)

	switch {
	case p.Name == "":
		return "Name is required"
	case !validation.IsValidPriceRange(p.PriceMin, p.PriceMax):
		return "Invalid price range"
	case p.BedroomsMin != nil && p.BedroomsMax != nil && *p.BedroomsMin > *p.BedroomsMax:
		return "Invalid bedroom range"
	case p.SizeMin != nil && p.SizeMax != nil && *p.SizeMin > *p.SizeMax:
		return "Invalid size range"
	}

	for _, ch := range p.NotificationChannels {
		if !slices.Contains(channels, ch) {
			return "Unknown notification channel: " + ch
		}
	}

	return ""
}
