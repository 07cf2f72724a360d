package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

// HandleWebhook verifies a stripe webhook payload and applies the event.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn().Err(err).Msg("webhook signature verification failed")

		return errors.Join(ErrInvalidSignature, err)
	}

	webhookEvents().WithLabelValues(string(event.Type)).Inc()

	return s.Dispatch(ctx, event)
}

// Dispatch applies a verified event.
func (s *Service) Dispatch(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := decode(event, &cs); err != nil {
			return err
		}

		return s.checkoutCompleted(&cs)

	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := decode(event, &sub); err != nil {
			return err
		}

		return s.subscriptionChanged(&sub)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := decode(event, &sub); err != nil {
			return err
		}

		return s.subscriptionDeleted(&sub)

	case stripe.EventTypeInvoicePaymentSucceeded:
		var inv stripe.Invoice
		if err := decode(event, &inv); err != nil {
			return err
		}

		log.Info().Str("invoice", inv.ID).Int64("amount", inv.AmountPaid).Msg("payment succeeded")

		return nil

	case stripe.EventTypeInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := decode(event, &inv); err != nil {
			return err
		}

		return s.paymentFailed(ctx, &inv)

	default:
		log.Debug().Str("type", string(event.Type)).Msg("unhandled webhook event")

		return nil
	}
}

func decode(event stripe.Event, dst any) error {
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}

	if err := json.Unmarshal(event.Data.Raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", event.Type, err)
	}

	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}

	return c.ID
}

func (s *Service) checkoutCompleted(cs *stripe.CheckoutSession) error {
	userID := cs.Metadata["userId"]
	cid := customerID(cs.Customer)

	if userID == "" || cid == "" {
		log.Warn().Str("session", cs.ID).Msg("checkout completed without user or customer")

		return nil
	}

	if err := user.Update(s.db, userID, map[string]any{"stripe_customer_id": cid}); err != nil {
		return fmt.Errorf("failed to link customer: %w", err)
	}

	log.Info().Str("user_id", userID).Str("customer", cid).Msg("checkout completed")

	return nil
}

// subscriber finds the user of a subscription by metadata, then by customer.
func (s *Service) subscriber(sub *stripe.Subscription) (*models.User, error) {
	if id := sub.Metadata["userId"]; id != "" {
		u, err := user.Get(s.db, id)
		if err == nil {
			return u, nil
		}

		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
	}

	return user.GetByStripeCustomer(s.db, customerID(sub.Customer))
}

func (s *Service) subscriptionChanged(sub *stripe.Subscription) error {
	u, err := s.subscriber(sub)
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn().Str("subscription", sub.ID).Msg("no user for subscription")

		return nil
	}

	if err != nil {
		return err
	}

	var priceID string
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	tier := s.TierForPrice(priceID)

	err = user.Update(s.db, u.ID, map[string]any{
		"subscription_tier":    tier,
		"subscription_ends_at": periodEnd(sub.CurrentPeriodEnd),
	})
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	log.Info().Str("user_id", u.ID).Str("tier", string(tier)).Str("status", string(sub.Status)).Msg("subscription updated")

	return nil
}

func (s *Service) subscriptionDeleted(sub *stripe.Subscription) error {
	u, err := s.subscriber(sub)
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn().Str("subscription", sub.ID).Msg("no user for deleted subscription")

		return nil
	}

	if err != nil {
		return err
	}

	err = user.Update(s.db, u.ID, map[string]any{
		"subscription_tier":    models.TierFree,
		"subscription_ends_at": nil,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	log.Info().Str("user_id", u.ID).Msg("subscription canceled")

	return nil
}

func (s *Service) paymentFailed(ctx context.Context, inv *stripe.Invoice) error {
	u, err := user.GetByStripeCustomer(s.db, customerID(inv.Customer))
	if errors.Is(err, user.ErrUserNotFound) {
		log.Warn().Str("invoice", inv.ID).Msg("payment failed for unknown customer")

		return nil
	}

	if err != nil {
		return err
	}

	log.Warn().Str("user_id", u.ID).Str("invoice", inv.ID).Msg("payment failed")

	if s.notifier == nil {
		return nil
	}

	return s.notifier.PaymentFailed(ctx, u, inv.ID, inv.AmountDue, string(inv.Currency))
}
