package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rentfusion/rentfusion/internal/db/controller/notification"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

const (
	// AlertsPerHour is the most notifications a user gets per hour.
	AlertsPerHour = 10
	// ChannelAll labels a result that covers every requested channel.
	ChannelAll = "all"
)

// AlertPayload describes one property alert.
type AlertPayload struct {
	UserID     string
	MatchID    string
	Property   *models.Property
	MatchScore int
	Channels   []string
}

// SendPropertyAlert sends a property alert on every requested channel at
// once and logs one notification row per result.
func (s *Service) SendPropertyAlert(ctx context.Context, p AlertPayload) ([]Result, error) {
	if p.Property == nil {
		return nil, errors.New("alert without property")
	}

	u, err := s.user(p.UserID)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-time.Hour)

	count, err := notification.CountSince(s.db, u.ID, since)
	if err != nil {
		// fail open
		log.Error().Err(err).Str("user_id", u.ID).Msg("alert rate limit check failed")
	} else if count >= AlertsPerHour {
		log.Info().Str("user_id", u.ID).Msg("alerts rate limited")

		return []Result{{Channel: ChannelAll, Error: "Rate limited"}}, nil
	}

	results := make([]Result, len(p.Channels))

	var wg sync.WaitGroup
	for i, ch := range p.Channels {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = s.observe(s.alert(ctx, ch, u, &p))
		}()
	}

	wg.Wait()

	s.logAlert(u.ID, &p, results)

	return results, nil
}

func (s *Service) alert(ctx context.Context, channel string, u *models.User, p *AlertPayload) Result {
	switch channel {
	case models.ChannelEmail:
		return s.alertEmail(ctx, u, p)
	case models.ChannelPush:
		return s.alertPush(ctx, u, p.Property)
	case models.ChannelSMS:
		return s.alertSMS(ctx, u, p.Property)
	case models.ChannelTelegram:
		return s.alertTelegram(ctx, u, p.Property)
	default:
		return Result{Channel: channel, Error: "Unknown channel"}
	}
}

func (s *Service) alertEmail(ctx context.Context, u *models.User, p *AlertPayload) Result {
	if s.senders.Email == nil {
		return failed(models.ChannelEmail, ErrNotConfigured)
	}

	var image string
	if len(p.Property.Images) > 0 {
		image = p.Property.Images[0]
	}

	html, err := s.tpl.Render("property_alert", map[string]any{
		"Property": p.Property,
		"Price":    formatPrice(p.Property.Price),
		"Image":    image,
		"Score":    p.MatchScore,
		"AppURL":   s.opts.AppURL,
	})
	if err != nil {
		return failed(models.ChannelEmail, err)
	}

	id, err := s.senders.Email.SendEmail(ctx, Email{
		From:    s.opts.AlertsFrom,
		To:      u.Email,
		Subject: fmt.Sprintf("New Property Alert: %s - €%s", p.Property.City, formatPrice(p.Property.Price)),
		HTML:    html,
	})
	if err != nil {
		return failed(models.ChannelEmail, err)
	}

	return Result{Channel: models.ChannelEmail, Success: true, MessageID: id}
}

func (s *Service) alertPush(ctx context.Context, u *models.User, prop *models.Property) Result {
	if s.senders.Push == nil {
		return failed(models.ChannelPush, ErrNotConfigured)
	}

	tokens, err := notification.DeviceTokens(s.db, u.ID)
	if err != nil {
		return failed(models.ChannelPush, err)
	}

	msgs := make([]PushMessage, 0, len(tokens))
	for _, t := range tokens {
		if !IsExpoPushToken(t) {
			continue
		}

		msgs = append(msgs, PushMessage{
			To:       t,
			Title:    "New Property Match!",
			Body:     fmt.Sprintf("%s in %s - €%s/mo", prop.Title, prop.City, formatPrice(prop.Price)),
			Data:     map[string]string{"propertyId": prop.ID, "url": prop.URL},
			Sound:    "default",
			Badge:    1,
			Priority: "high",
		})
	}

	if len(msgs) == 0 {
		return Result{Channel: models.ChannelPush, Error: "Invalid push token"}
	}

	tickets, err := s.senders.Push.SendPush(ctx, msgs)
	if err != nil {
		return failed(models.ChannelPush, err)
	}

	res := Result{Channel: models.ChannelPush}

	for i, t := range tickets {
		if t.OK {
			if !res.Success {
				res.Success = true
				res.MessageID = t.ID
			}

			continue
		}

		if res.Error == "" {
			res.Error = t.Message
		}

		if t.Error == ExpoDeviceNotRegistered && i < len(msgs) {
			if err := notification.RemoveDevice(s.db, msgs[i].To); err != nil {
				log.Error().Err(err).Msg("failed to remove unregistered device")
			}
		}
	}

	if res.Success {
		res.Error = ""
	}

	return res
}

func (s *Service) alertSMS(ctx context.Context, u *models.User, prop *models.Property) Result {
	if u.Phone == "" {
		return Result{Channel: models.ChannelSMS, Error: "No phone number"}
	}

	if s.senders.SMS == nil {
		return failed(models.ChannelSMS, ErrNotConfigured)
	}

	body := fmt.Sprintf("RentFusion Alert!\n%s\n%s - €%s/mo\nView: %s",
		prop.Title, prop.City, formatPrice(prop.Price), prop.URL)

	id, err := s.senders.SMS.SendSMS(ctx, u.Phone, body)
	if err != nil {
		return Result{Channel: models.ChannelSMS, MessageID: id, Error: err.Error()}
	}

	return Result{Channel: models.ChannelSMS, Success: true, MessageID: id}
}

func (s *Service) alertTelegram(ctx context.Context, u *models.User, prop *models.Property) Result {
	if u.TelegramChatID == "" {
		return Result{Channel: models.ChannelTelegram, Error: "No Telegram chat ID"}
	}

	if s.senders.Telegram == nil {
		return failed(models.ChannelTelegram, ErrNotConfigured)
	}

	id, err := s.senders.Telegram.SendTelegram(ctx, u.TelegramChatID, telegramText(prop))
	if err != nil {
		return failed(models.ChannelTelegram, err)
	}

	return Result{Channel: models.ChannelTelegram, Success: true, MessageID: id}
}

func telegramText(p *models.Property) string {
	city := p.City
	if p.Neighborhood != "" {
		city += " - " + p.Neighborhood
	}

	lines := []string{
		"New Property Alert!",
		"",
		p.Title,
		city,
		"€" + formatPrice(p.Price) + "/month",
	}

	if p.Bedrooms > 0 {
		bed := strconv.Itoa(p.Bedrooms) + " bedroom"
		if p.Bedrooms > 1 {
			bed += "s"
		}

		lines = append(lines, bed)
	}

	if p.SizeSqm > 0 {
		lines = append(lines, strconv.Itoa(p.SizeSqm)+" m²")
	}

	if p.Furnished {
		lines = append(lines, "Furnished")
	}

	if p.PetsAllowed {
		lines = append(lines, "Pets allowed")
	}

	lines = append(lines, "", "View: "+p.URL)

	return strings.Join(lines, "\n")
}

func (s *Service) logAlert(userID string, p *AlertPayload, results []Result) {
	now := s.now()

	var matchID *string
	if p.MatchID != "" {
		matchID = &p.MatchID
	}

	rows := make([]models.Notification, 0, len(results))
	for _, r := range results {
		n := models.Notification{
			UserID:          userID,
			PropertyMatchID: matchID,
			Type:            models.NotificationTypeNewMatch,
			Channel:         r.Channel,
			Subject:         "New property in " + p.Property.City,
			Body:            p.Property.Title,
			LinkURL:         p.Property.URL,
			SentAt:          &now,
			Delivered:       r.Success,
			MessageID:       r.MessageID,
			Error:           r.Error,
		}

		if r.Success {
			n.DeliveredAt = &now
		}

		rows = append(rows, n)
	}

	if err := notification.CreateBatch(s.db, rows); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to log notifications")
	}
}

// formatPrice drops the fraction of whole euro amounts.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
