package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/db/controller/notification"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

// SendEmail sends a titled message to the user and marks the matching
// notification row as delivered.
func (s *Service) SendEmail(ctx context.Context, userID, typ, title, message, linkURL string) (*Delivery, error) {
	u, err := s.user(userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNoEmail
	}

	if err != nil {
		return nil, err
	}

	if u.Email == "" {
		return nil, ErrNoEmail
	}

	if !u.EmailNotifications {
		return &Delivery{Skipped: true, Reason: "Email notifications disabled"}, nil
	}

	if s.senders.Email == nil {
		return nil, fmt.Errorf("email: %w", ErrNotConfigured)
	}

	html, err := s.tpl.Render("notification", map[string]any{
		"Brand":   brand,
		"Title":   title,
		"Message": message,
		"LinkURL": linkURL,
		"AppURL":  s.opts.AppURL,
	})
	if err != nil {
		return nil, err
	}

	text := title + "\n\n" + message
	if linkURL != "" {
		text += "\n\n" + linkURL
	}

	id, err := s.senders.Email.SendEmail(ctx, Email{
		From:    s.opts.From,
		To:      u.Email,
		Subject: title,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		s.observe(failed(models.ChannelEmail, err))

		return nil, err
	}

	s.observe(Result{Channel: models.ChannelEmail, Success: true, MessageID: id})

	if _, err := notification.MarkLatestDelivered(s.db, u.ID, typ, models.ChannelEmail, id, s.now()); err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("failed to mark email delivered")
	}

	return &Delivery{MessageID: id}, nil
}

// SendSMS texts a premium user, the link appended, cut to one message.
func (s *Service) SendSMS(ctx context.Context, userID, message, linkURL string) (*Delivery, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	if u.EffectiveTier(s.now()) != models.TierPremium {
		return nil, ErrPremiumOnly
	}

	if !u.SMSNotifications {
		return &Delivery{Skipped: true, Reason: "SMS notifications disabled"}, nil
	}

	if u.Phone == "" {
		return nil, ErrNoPhone
	}

	if s.senders.SMS == nil {
		return nil, fmt.Errorf("sms: %w", ErrNotConfigured)
	}

	body := message
	if linkURL != "" {
		body += " " + linkURL
	}

	id, err := s.senders.SMS.SendSMS(ctx, u.Phone, truncate(body, SMSMaxLen))
	if err != nil {
		s.observe(failed(models.ChannelSMS, err))

		return nil, err
	}

	s.observe(Result{Channel: models.ChannelSMS, Success: true, MessageID: id})

	if _, err := notification.MarkLatestDelivered(s.db, u.ID, "", models.ChannelSMS, id, s.now()); err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("failed to mark sms delivered")
	}

	return &Delivery{MessageID: id}, nil
}

// PaymentFailed e-mails the user that an invoice could not be charged.
// It is sent regardless of the notification settings.
func (s *Service) PaymentFailed(ctx context.Context, u *models.User, invoiceID string, amountDue int64, currency string) error {
	if u.Email == "" {
		return ErrNoEmail
	}

	if s.senders.Email == nil {
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}

	name := u.FullName
	if name == "" {
		name = u.Email
	}

	html, err := s.tpl.Render("payment_failed", map[string]any{
		"Brand":     brand,
		"Name":      name,
		"Amount":    formatAmount(amountDue, currency),
		"Tier":      string(u.SubscriptionTier),
		"InvoiceID": invoiceID,
		"AppURL":    s.opts.AppURL,
	})
	if err != nil {
		return err
	}

	id, err := s.senders.Email.SendEmail(ctx, Email{
		From:    s.opts.From,
		To:      u.Email,
		Subject: "Payment failed for your " + brand + " subscription",
		HTML:    html,
	})
	if err != nil {
		s.observe(failed(models.ChannelEmail, err))

		return err
	}

	s.observe(Result{Channel: models.ChannelEmail, Success: true, MessageID: id})

	return nil
}

// formatAmount renders minor units, 999 eur is "EUR 9.99".
func formatAmount(minor int64, currency string) string {
	return strings.ToUpper(currency) + " " + strconv.FormatFloat(float64(minor)/100, 'f', 2, 64)
}
