package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

// PaymentNotifier tells a user that an invoice could not be charged.
type PaymentNotifier interface {
	PaymentFailed(ctx context.Context, u *models.User, invoiceID string, amountDue int64, currency string) error
}

// Service runs billing against a Gateway and the users table.
type Service struct {
	db            *gorm.DB
	gw            Gateway
	prices        config.StripePrices
	webhookSecret string
	appURL        string
	notifier      PaymentNotifier
}

// New returns a billing service. gw may be nil when stripe is not configured,
// in which case Checkout and Portal fail with ErrNotConfigured.
func New(db *gorm.DB, gw Gateway, cfg *config.Stripe, appURL string, notifier PaymentNotifier) *Service {
	return &Service{
		db:            db,
		gw:            gw,
		prices:        cfg.Prices,
		webhookSecret: cfg.WebhookSecret,
		appURL:        appURL,
		notifier:      notifier,
	}
}

// TierForPrice maps a stripe price id to the tier it buys.
func (s *Service) TierForPrice(priceID string) models.SubscriptionTier {
	switch priceID {
	case "":
		return models.TierFree
	case s.prices.BasicMonthly, s.prices.BasicYearly:
		return models.TierBasic
	case s.prices.PremiumMonthly, s.prices.PremiumYearly:
		return models.TierPremium
	default:
		return models.TierFree
	}
}

// Checkout opens a subscription checkout for the user, creating the stripe
// customer on first use.
func (s *Service) Checkout(ctx context.Context, userID, priceID string) (*Session, error) {
	if userID == "" || priceID == "" {
		return nil, ErrMissingFields
	}

	if s.gw == nil {
		return nil, ErrNotConfigured
	}

	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	customerID := u.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gw.CreateCustomer(ctx, u.Email, u.FullName, u.ID)
		if err != nil {
			return nil, err
		}

		if err := user.Update(s.db, u.ID, map[string]any{"stripe_customer_id": customerID}); err != nil {
			return nil, err
		}

		log.Info().Str("user_id", u.ID).Str("customer", customerID).Msg("created stripe customer")
	}

	return s.gw.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		UserID:     u.ID,
		SuccessURL: s.appURL + "/dashboard?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.appURL + "/pricing?canceled=true",
	})
}

// Portal returns the billing portal url of the user.
func (s *Service) Portal(ctx context.Context, userID string) (string, error) {
	if s.gw == nil {
		return "", ErrNotConfigured
	}

	u, err := s.user(userID)
	if err != nil {
		return "", err
	}

	if u.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}

	return s.gw.CreatePortalSession(ctx, u.StripeCustomerID, s.appURL+"/dashboard/settings")
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

func periodEnd(unix int64) *time.Time {
	if unix == 0 {
		return nil
	}

	t := time.Unix(unix, 0).UTC()

	return &t
}
