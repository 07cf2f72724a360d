package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

const (
	defaultFrom       = "RentFusion <notifications@rentfusion.nl>"
	defaultAlertsFrom = "RentFusion Alerts <alerts@rentfusion.nl>"
	brand             = "RentFusion"
)

// Result is the outcome of one delivery attempt.
type Result struct {
	Channel   string `json:"channel"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Delivery is the outcome of a direct e-mail or sms.
type Delivery struct {
	MessageID string `json:"messageId,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"message,omitempty"`
}

// Senders are the channel clients. A nil sender disables its channel.
type Senders struct {
	Email    EmailSender
	SMS      SMSSender
	Push     PushSender
	Telegram TelegramSender
}

// Options hold sender addresses and links.
type Options struct {
	From       string
	AlertsFrom string
	AppURL     string
}

// Service delivers notifications.
type Service struct {
	db      *gorm.DB
	senders Senders
	opts    Options
	tpl     *Renderer
	now     func() time.Time
}

// SendersFromConfig builds a client for every channel that has credentials.
func SendersFromConfig(cfg *config.Config) Senders {
	var s Senders

	if cfg.Email.ResendAPIKey != "" {
		s.Email = NewResendSender(cfg.Email.ResendAPIKey)
	}

	if cfg.SMS.AccountSID != "" && cfg.SMS.AuthToken != "" {
		s.SMS = NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.From)
	}

	// expo accepts unauthenticated requests
	s.Push = NewExpoClient(cfg.Push.ExpoURL, cfg.Push.AccessToken)

	if cfg.Telegram.BotToken != "" {
		s.Telegram = NewTelegramClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
	}

	return s
}

// New returns a notification service using the configured channels.
func New(db *gorm.DB, cfg *config.Config) (*Service, error) {
	return NewService(db, SendersFromConfig(cfg), Options{
		From:       cfg.Email.From,
		AlertsFrom: cfg.Email.AlertsFrom,
		AppURL:     cfg.Webserver.AppURL,
	})
}

// NewService returns a notification service with explicit senders.
func NewService(db *gorm.DB, senders Senders, opts Options) (*Service, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	tpl, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	if opts.From == "" {
		opts.From = defaultFrom
	}

	if opts.AlertsFrom == "" {
		opts.AlertsFrom = defaultAlertsFrom
	}

	return &Service{
		db:      db,
		senders: senders,
		opts:    opts,
		tpl:     tpl,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) user(id string) (*models.User, error) {
	u, err := user.Get(s.db, id)
	if errors.Is(err, user.ErrUserNotFound) || errors.Is(err, user.ErrIDEmpty) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return u, nil
}

func (s *Service) observe(r Result) Result {
	outcome := "success"
	if !r.Success {
		outcome = "failure"

		log.Warn().Str("channel", r.Channel).Str("error", r.Error).Msg("notification failed")
	}

	sent().WithLabelValues(r.Channel, outcome).Inc()

	return r
}

func failed(channel string, err error) Result {
	return Result{Channel: channel, Error: err.Error()}
}
