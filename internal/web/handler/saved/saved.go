// Package saved serves the bookmarked properties of a user.
package saved

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/property"
	savedcontroller "github.com/rentfusion/rentfusion/internal/db/controller/saved"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the saved properties route below /api.
const Path = "/saved"

// Service is the saved properties handler service.
type Service struct {
	db *gorm.DB
}

type saveRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// Init registers the saved property routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB

	g := router.Group(Path, auth.RequireUser(deps.Auth))
	g.Get(handler.RootPath, s.List)
	g.Post("/:propertyId", s.Save)
	g.Delete("/:propertyId", s.Unsave)

	return nil
}

// List returns the bookmarks of the caller with their properties.
func (s *Service) List(c *fiber.Ctx) error {
	items, err := savedcontroller.List(s.db, auth.CurrentUser(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": items})
}

// Save bookmarks a property. Saving it again answers 200 with the existing row.
func (s *Service) Save(c *fiber.Ctx) error {
	var req saveRequest
	if len(c.Body()) > 0 {
		if err := handler.Bind(c, &req); err != nil {
			return err
		}
	}

	propertyID := c.Params("propertyId")

	if _, err := property.Get(s.db, propertyID); err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Property not found")
		}

		return err
	}

	sp, created, err := savedcontroller.Save(s.db, auth.CurrentUser(c).ID, propertyID, req.Notes)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(sp)
}

// Unsave removes a bookmark.
func (s *Service) Unsave(c *fiber.Ctx) error {
	err := savedcontroller.Unsave(s.db, auth.CurrentUser(c).ID, c.Params("propertyId"))
	if err != nil {
		if errors.Is(err, savedcontroller.ErrNotSaved) {
			return handler.JSONError(c, fiber.StatusNotFound, "Property is not saved")
		}

		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
