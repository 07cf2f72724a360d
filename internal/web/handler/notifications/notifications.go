// Package notifications serves the notification feed, device registration
// and direct e-mail and sms sends.
package notifications

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/notification"
	"github.com/rentfusion/rentfusion/internal/notify"
	"github.com/rentfusion/rentfusion/internal/pagination"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Route paths below /api.
const (
	Path               = "/notifications"
	SendEmailPath      = Path + "/send-email"
	SendSMSPath        = Path + "/send-sms"
	RegisterDevicePath = Path + "/register-device"
)

// localInternal marks requests authenticated with the cron secret.
const localInternal = "internal"

// Service is the notifications handler service.
type Service struct {
	db     *gorm.DB
	notify *notify.Service
}

type sendEmailRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type" validate:"required,max=64"`
	Title   string `json:"title" validate:"required,max=512"`
	Message string `json:"message" validate:"required"`
	LinkURL string `json:"linkUrl" validate:"omitempty,url"`
}

type sendSMSRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message" validate:"required"`
	LinkURL string `json:"linkUrl" validate:"omitempty,url"`
}

type registerDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	DeviceID string `json:"deviceId" validate:"max=255"`
	Platform string `json:"platform" validate:"omitempty,oneof=ios android web"`
}

// Init registers the notification routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.Notify == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.notify = deps.Notify

	requireUser := auth.RequireUser(deps.Auth)
	cronSecret := deps.Cfg.Cron.Secret

	// internal services send with the cron secret, users only to themselves
	internalOrUser := func(c *fiber.Ctx) error {
		if auth.IsCronRequest(c, cronSecret) {
			c.Locals(localInternal, true)

			return c.Next()
		}

		return requireUser(c)
	}

	router.Post(SendEmailPath, internalOrUser, s.SendEmail)
	router.Post(SendSMSPath, internalOrUser, s.SendSMS)
	router.Post(RegisterDevicePath, requireUser, s.RegisterDevice)
	router.Get(Path, requireUser, s.List)
	router.Post(Path+"/:id/read", requireUser, s.MarkRead)

	return nil
}

// recipient resolves the target user of a send.
func recipient(c *fiber.Ctx, userID string) (string, error) {
	if internal, _ := c.Locals(localInternal).(bool); internal {
		if userID == "" {
			return "", fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
		}

		return userID, nil
	}

	u := auth.CurrentUser(c)
	if userID != "" && userID != u.ID {
		return "", fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}

	return u.ID, nil
}

// SendEmail sends a titled e-mail to a user.
func (s *Service) SendEmail(c *fiber.Ctx) error {
	var req sendEmailRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	userID, err := recipient(c, req.UserID)
	if err != nil {
		return err
	}

	d, err := s.notify.SendEmail(c.UserContext(), userID, req.Type, req.Title, req.Message, req.LinkURL)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(d)
}

// SendSMS texts a premium user.
func (s *Service) SendSMS(c *fiber.Ctx) error {
	var req sendSMSRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	userID, err := recipient(c, req.UserID)
	if err != nil {
		return err
	}

	d, err := s.notify.SendSMS(c.UserContext(), userID, req.Message, req.LinkURL)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(d)
}

func sendError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notify.ErrNoEmail):
		return handler.JSONError(c, fiber.StatusNotFound, "User email not found")
	case errors.Is(err, notify.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, notify.ErrPremiumOnly):
		return handler.JSONError(c, fiber.StatusForbidden, "SMS notifications are a Premium feature")
	case errors.Is(err, notify.ErrNoPhone):
		return handler.JSONError(c, fiber.StatusNotFound, "No phone number on file")
	case errors.Is(err, notify.ErrNotConfigured):
		return handler.JSONError(c, fiber.StatusServiceUnavailable, "Channel is not configured")
	}

	log.Error().Err(err).Msg("notification send failed")

	return handler.JSONError(c, fiber.StatusInternalServerError, "Failed to send notification")
}

// RegisterDevice stores an expo push token of the caller.
func (s *Service) RegisterDevice(c *fiber.Ctx) error {
	var req registerDeviceRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	if !notify.IsExpoPushToken(req.Token) {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid push token")
	}

	d, err := notification.RegisterDevice(s.db, auth.CurrentUser(c).ID, req.Token, req.DeviceID, req.Platform)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "device": d})
}

// List returns a page of the caller's notifications. ?unread=true limits it
// to unread ones.
func (s *Service) List(c *fiber.Ctx) error {
	items, info, err := notification.List(s.db, auth.CurrentUser(c).ID, c.QueryBool("unread"), pagination.ParseQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": items, "pagination": info})
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(c *fiber.Ctx) error {
	err := notification.MarkRead(s.db, auth.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Notification not found")
		}

		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
