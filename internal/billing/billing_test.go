package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

const (
	appURL        = "https://app.example.com"
	webhookSecret = "whsec_test"
)

type fakeGateway struct {
	customers int
	checkout  CheckoutParams
	portalFor string
	returnURL string
}

func (f *fakeGateway) CreateCustomer(_ context.Context, _, _, _ string) (string, error) {
	f.customers++

	return "cus_new", nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, p CheckoutParams) (*Session, error) {
	f.checkout = p

	return &Session{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}, nil
}

func (f *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	f.portalFor = customerID
	f.returnURL = returnURL

	return "https://billing.stripe.com/p/1", nil
}

type fakeNotifier struct {
	userID  string
	invoice string
}

func (f *fakeNotifier) PaymentFailed(_ context.Context, u *models.User, invoiceID string, _ int64, _ string) error {
	f.userID = u.ID
	f.invoice = invoiceID

	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeGateway, *fakeNotifier) {
	t.Helper()

	db := dbtest.Open(t)
	gw := &fakeGateway{}
	n := &fakeNotifier{}

	cfg := &config.Stripe{
		WebhookSecret: webhookSecret,
		Prices: config.StripePrices{
			BasicMonthly:   "price_basic_m",
			BasicYearly:    "price_basic_y",
			PremiumMonthly: "price_premium_m",
			PremiumYearly:  "price_premium_y",
		},
	}

	return New(db, gw, cfg, appURL, n), db, gw, n
}

func event(t *testing.T, typ stripe.EventType, obj any) stripe.Event {
	t.Helper()

	raw, err := json.Marshal(obj)
	require.NoError(t, err)

	return stripe.Event{ID: "evt_test", Type: typ, Data: &stripe.EventData{Raw: raw}}
}

func TestTierForPrice(t *testing.T) {
	s, _, _, _ := newTestService(t)

	assert.Equal(t, models.TierBasic, s.TierForPrice("price_basic_m"))
	assert.Equal(t, models.TierBasic, s.TierForPrice("price_basic_y"))
	assert.Equal(t, models.TierPremium, s.TierForPrice("price_premium_m"))
	assert.Equal(t, models.TierPremium, s.TierForPrice("price_premium_y"))
	assert.Equal(t, models.TierFree, s.TierForPrice("price_other"))
	assert.Equal(t, models.TierFree, s.TierForPrice(""))
}

func TestCheckoutCreatesCustomerOnce(t *testing.T) {
	s, db, gw, _ := newTestService(t)
	u := dbtest.CreateUser(t, db, "renter@example.com", models.TierFree)

	sess, err := s.Checkout(context.Background(), u.ID, "price_basic_m")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.ID)
	assert.Equal(t, 1, gw.customers)

	assert.Equal(t, "cus_new", gw.checkout.CustomerID)
	assert.Equal(t, u.ID, gw.checkout.UserID)
	assert.Equal(t, appURL+"/dashboard?success=true&session_id={CHECKOUT_SESSION_ID}", gw.checkout.SuccessURL)
	assert.Equal(t, appURL+"/pricing?canceled=true", gw.checkout.CancelURL)

	stored, err := user.Get(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", stored.StripeCustomerID)

	_, err = s.Checkout(context.Background(), u.ID, "price_basic_m")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.customers, "customer is reused")
}

func TestCheckoutErrors(t *testing.T) {
	s, _, _, _ := newTestService(t)

	_, err := s.Checkout(context.Background(), "", "price_basic_m")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = s.Checkout(context.Background(), "missing", "price_basic_m")
	assert.ErrorIs(t, err, ErrUserNotFound)

	unconfigured := New(s.db, nil, &config.Stripe{}, appURL, nil)
	_, err = unconfigured.Checkout(context.Background(), "someone", "price_basic_m")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPortal(t *testing.T) {
	s, db, gw, _ := newTestService(t)
	u := dbtest.CreateUser(t, db, "renter@example.com", models.TierBasic)

	_, err := s.Portal(context.Background(), u.ID)
	require.ErrorIs(t, err, ErrNoCustomer)

	require.NoError(t, user.Update(db, u.ID, map[string]any{"stripe_customer_id": "cus_1"}))

	url, err := s.Portal(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, "cus_1", gw.portalFor)
	assert.Equal(t, appURL+"/dashboard/settings", gw.returnURL)
}

func TestCheckoutCompletedLinksCustomer(t *testing.T) {
	s, db, _, _ := newTestService(t)
	u := dbtest.CreateUser(t, db, "renter@example.com", models.TierFree)

	err := s.Dispatch(context.Background(), event(t, stripe.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":       "cs_1",
		"customer": "cus_9",
		"metadata": map[string]string{"userId": u.ID},
	}))
	require.NoError(t, err)

	stored, err := user.Get(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_9", stored.StripeCustomerID)
}

func TestSubscriptionLifecycle(t *testing.T) {
	s, db, _, _ := newTestService(t)
	u := dbtest.CreateUser(t, db, "renter@example.com", models.TierFree)
	require.NoError(t, user.Update(db, u.ID, map[string]any{"stripe_customer_id": "cus_1"}))

	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	// found by customer id, no metadata
	err := s.Dispatch(context.Background(), event(t, stripe.EventTypeCustomerSubscriptionUpdated, map[string]any{
		"id":                 "sub_1",
		"customer":           "cus_1",
		"status":             "active",
		"current_period_end": end.Unix(),
		"items": map[string]any{
			"data": []map[string]any{{"id": "si_1", "price": map[string]any{"id": "price_premium_y"}}},
		},
	}))
	require.NoError(t, err)

	stored, err := user.Get(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, stored.SubscriptionTier)
	require.NotNil(t, stored.SubscriptionEndsAt)
	assert.True(t, end.Equal(*stored.SubscriptionEndsAt))

	err = s.Dispatch(context.Background(), event(t, stripe.EventTypeCustomerSubscriptionDeleted, map[string]any{
		"id":       "sub_1",
		"customer": "cus_1",
		"metadata": map[string]string{"userId": u.ID},
	}))
	require.NoError(t, err)

	stored, err = user.Get(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, stored.SubscriptionTier)
	assert.Nil(t, stored.SubscriptionEndsAt)
}

func TestSubscriptionUnknownUserIsIgnored(t *testing.T) {
	s, _, _, _ := newTestService(t)

	err := s.Dispatch(context.Background(), event(t, stripe.EventTypeCustomerSubscriptionCreated, map[string]any{
		"id":       "sub_1",
		"customer": "cus_unknown",
	}))
	assert.NoError(t, err)
}

func TestPaymentFailedNotifiesUser(t *testing.T) {
	s, db, _, n := newTestService(t)
	u := dbtest.CreateUser(t, db, "renter@example.com", models.TierBasic)
	require.NoError(t, user.Update(db, u.ID, map[string]any{"stripe_customer_id": "cus_1"}))

	err := s.Dispatch(context.Background(), event(t, stripe.EventTypeInvoicePaymentFailed, map[string]any{
		"id":         "in_1",
		"customer":   "cus_1",
		"amount_due": 999,
		"currency":   "eur",
	}))
	require.NoError(t, err)
	assert.Equal(t, u.ID, n.userID)
	assert.Equal(t, "in_1", n.invoice)
}

func TestHandleWebhookVerifiesSignature(t *testing.T) {
	s, _, _, _ := newTestService(t)

	payload := []byte(`{"id":"evt_1","object":"event","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1","amount_paid":999}}}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	require.NoError(t, s.HandleWebhook(context.Background(), payload, signed.Header))

	err := s.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.True(t, errors.Is(err, ErrInvalidSignature), "got %v", err)
}
