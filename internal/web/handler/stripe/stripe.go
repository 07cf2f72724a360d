// Package stripe serves checkout, the billing portal and the stripe webhook.
package stripe

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/billing"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Route paths below /api.
const (
	CheckoutPath = "/stripe/create-checkout-session"
	PortalPath   = "/stripe/create-portal-session"
	WebhookPath  = "/stripe/webhook"

	// SignatureHeader carries the webhook signature.
	SignatureHeader = "Stripe-Signature"
)

// Service is the stripe handler service.
type Service struct {
	billing *billing.Service
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
	UserID  string `json:"userId"`
}

// Init registers the stripe routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.Billing == nil {
		return handler.ErrNilDeps
	}

	s.billing = deps.Billing

	router.Post(CheckoutPath, auth.OptionalUser(deps.Auth), s.Checkout)
	router.Post(PortalPath, auth.RequireUser(deps.Auth), s.Portal)
	router.Post(WebhookPath, s.Webhook)

	return nil
}

// Checkout starts a subscription checkout. userId defaults to the caller.
func (s *Service) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if u := auth.CurrentUser(c); u != nil {
		if req.UserID != "" && req.UserID != u.ID {
			return handler.JSONError(c, fiber.StatusForbidden, "Forbidden")
		}

		req.UserID = u.ID
	}

	sess, err := s.billing.Checkout(c.UserContext(), req.UserID, req.PriceID)
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(sess)
}

// Portal opens the stripe billing portal of the caller.
func (s *Service) Portal(c *fiber.Ctx) error {
	url, err := s.billing.Portal(c.UserContext(), auth.CurrentUser(c).ID)
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(fiber.Map{"url": url})
}

// Webhook verifies and applies a stripe event.
func (s *Service) Webhook(c *fiber.Ctx) error {
	sig := c.Get(SignatureHeader)
	if sig == "" {
		return handler.JSONError(c, fiber.StatusBadRequest, "Missing signature")
	}

	// the signature covers the exact bytes, so the body is not re-encoded
	payload := append([]byte(nil), c.Body()...)

	if err := s.billing.HandleWebhook(c.UserContext(), payload, sig); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			return handler.JSONError(c, fiber.StatusBadRequest, "Invalid signature")
		}

		log.Error().Err(err).Msg("webhook handler failed")

		return handler.JSONError(c, fiber.StatusInternalServerError, "Webhook handler failed")
	}

	return c.JSON(fiber.Map{"received": true})
}

func billingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrMissingFields):
		return handler.JSONError(c, fiber.StatusBadRequest, "Missing required fields")
	case errors.Is(err, billing.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, billing.ErrNoCustomer):
		return handler.JSONError(c, fiber.StatusNotFound, "No subscription found")
	case errors.Is(err, billing.ErrNotConfigured):
		return handler.JSONError(c, fiber.StatusServiceUnavailable, "Payments are not available")
	}

	return err
}
