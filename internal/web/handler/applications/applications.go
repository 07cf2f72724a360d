// Package applications tracks the rental applications of a user.
package applications

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/application"
	"github.com/rentfusion/rentfusion/internal/db/controller/property"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the applications route below /api.
const Path = "/applications"

// Service is the applications handler service.
type Service struct {
	db *gorm.DB
}

type createRequest struct {
	PropertyID        string  `json:"propertyId" validate:"required"`
	Status            string  `json:"status" validate:"omitempty,oneof=draft submitted"`
	GeneratedLetterID *string `json:"generatedLetterId"`
	Notes             string  `json:"notes" validate:"max=5000"`
}

type updateRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=draft submitted viewed accepted rejected withdrawn"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

// Init registers the application routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB

	g := router.Group(Path, auth.RequireUser(deps.Auth))
	g.Get(handler.RootPath, s.List)
	g.Post(handler.RootPath, s.Create)
	g.Patch("/:id", s.Update)

	return nil
}

// List returns the applications of the caller, optionally by ?status=.
func (s *Service) List(c *fiber.Ctx) error {
	status := models.ApplicationStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid status")
	}

	items, err := application.List(s.db, auth.CurrentUser(c).ID, status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": items})
}

// Create starts an application, as draft unless submitted right away.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	if _, err := property.Get(s.db, req.PropertyID); err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Property not found")
		}

		return err
	}

	a := &models.Application{
		UserID:            auth.CurrentUser(c).ID,
		PropertyID:        req.PropertyID,
		GeneratedLetterID: req.GeneratedLetterID,
		Notes:             req.Notes,
	}

	status := models.ApplicationDraft
	if req.Status != "" {
		status = models.ApplicationStatus(req.Status)
	}

	a.SetStatus(status, time.Now().UTC())

	if err := application.Create(s.db, a); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Update changes the status or notes. A status change stamps its timestamp.
func (s *Service) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	a, err := application.Get(s.db, auth.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Application not found")
		}

		return err
	}

	if req.Status != nil {
		a.SetStatus(models.ApplicationStatus(*req.Status), time.Now().UTC())
	}

	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	if err = application.Save(s.db, a); err != nil {
		return err
	}

	return c.JSON(a)
}
