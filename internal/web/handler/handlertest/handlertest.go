// Package handlertest builds an api app on an in-memory database with fake
// providers, for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/ai"
	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/billing"
	"github.com/rentfusion/rentfusion/internal/cache"
	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/matcher"
	"github.com/rentfusion/rentfusion/internal/notify"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/web/handler"
	"github.com/rentfusion/rentfusion/internal/web/session"
)

// Secrets used by the test config.
const (
	JWTSecret     = "test-secret-test-secret-test-secret"
	CronSecret    = "cron-secret"
	WebhookSecret = "whsec_test"
	AppURL        = "https://app.example.com"
)

// Env is a running test app.
type Env struct {
	t         *testing.T
	App       *fiber.App
	Deps      *handler.Deps
	DB        *gorm.DB
	Completer *Completer
	Gateway   *Gateway
	Email     *EmailSender
	SMS       *SMSSender
}

// Config returns the config the test app runs with.
func Config() *config.Config {
	return &config.Config{
		Title: "RentFusion",
		Webserver: config.Webserver{
			Port:   8080,
			URL:    "http://localhost:8080",
			AppURL: AppURL,
		},
		Auth: config.Auth{
			JWTSecret:  JWTSecret,
			TokenTTL:   time.Hour,
			SessionTTL: time.Hour,
			TOTPIssuer: "RentFusion",
		},
		OpenAI: config.OpenAI{APIKey: "sk-test", Model: "gpt-4-turbo-preview"},
		Stripe: config.Stripe{
			SecretKey:     "sk_test",
			WebhookSecret: WebhookSecret,
			Prices: config.StripePrices{
				BasicMonthly:   "price_basic_m",
				BasicYearly:    "price_basic_y",
				PremiumMonthly: "price_premium_m",
				PremiumYearly:  "price_premium_y",
			},
		},
		Cron: config.Cron{Secret: CronSecret},
	}
}

// New returns an app with the given handlers mounted under /api.
// mutate may adjust the config before the services are built.
func New(t *testing.T, mutate func(*config.Config), services ...handler.Service) *Env {
	t.Helper()

	cfg := Config()
	if mutate != nil {
		mutate(cfg)
	}

	db := dbtest.Open(t)
	require.NoError(t, auth.SeedLimits(db))

	storage := memory.New()
	session.Init(storage)

	c, err := cache.New(storage, time.Minute)
	require.NoError(t, err)

	e := &Env{
		t:         t,
		DB:        db,
		Completer: &Completer{},
		Gateway:   &Gateway{},
		Email:     &EmailSender{},
		SMS:       &SMSSender{},
	}

	n, err := notify.NewService(db, notify.Senders{Email: e.Email, SMS: e.SMS}, notify.Options{AppURL: AppURL})
	require.NoError(t, err)

	e.Deps = &handler.Deps{
		Cfg:     cfg,
		DB:      db,
		Auth:    auth.NewService(db, &cfg.Auth),
		Cache:   c,
		Limiter: ratelimit.New(cfg.RateLimit),
		AI:      ai.NewService(e.Completer, &cfg.OpenAI),
		Billing: billing.New(db, e.Gateway, &cfg.Stripe, AppURL, n),
		Notify:  n,
		Matcher: matcher.New(db, n),
	}

	e.App = fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	api := e.App.Group(handler.APIPath)

	for _, s := range services {
		require.NoError(t, s.Init(api, e.Deps))
	}

	return e
}

// User creates a user on tier and returns it with a bearer token.
func (e *Env) User(email string, tier models.SubscriptionTier) (*models.User, string) {
	e.t.Helper()

	u := dbtest.CreateUser(e.t, e.DB, email, tier)

	tok, _, err := e.Deps.Auth.Tokens.IssueToken(u)
	require.NoError(e.t, err)

	return u, tok
}

// Request runs a request against the app. A non nil body is sent as JSON,
// []byte bodies as is.
func (e *Env) Request(method, path string, body any, token string) *http.Response {
	e.t.Helper()

	var r io.Reader

	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)

		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	return e.Do(req)
}

// Do runs a prepared request.
func (e *Env) Do(req *http.Request) *http.Response {
	e.t.Helper()

	resp, err := e.App.Test(req, -1)
	require.NoError(e.t, err)

	return resp
}

// Decode reads the JSON body of resp into dst.
func Decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// Completer returns a canned chat completion.
type Completer struct {
	mu    sync.Mutex
	Reply string
	Err   error
	Calls int
}

// CreateChatCompletion implements ai.Completer.
func (f *Completer) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++

	if f.Err != nil {
		return openai.ChatCompletionResponse{}, f.Err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.Reply}}},
		Usage:   openai.Usage{TotalTokens: 100},
	}, nil
}

// Gateway is a stripe gateway that records its calls.
type Gateway struct {
	Checkout billing.CheckoutParams
}

// CreateCustomer implements billing.Gateway.
func (g *Gateway) CreateCustomer(context.Context, string, string, string) (string, error) {
	return "cus_test", nil
}

// CreateCheckoutSession implements billing.Gateway.
func (g *Gateway) CreateCheckoutSession(_ context.Context, p billing.CheckoutParams) (*billing.Session, error) {
	g.Checkout = p

	return &billing.Session{ID: "cs_test", URL: "https://checkout.stripe.com/cs_test"}, nil
}

// CreatePortalSession implements billing.Gateway.
func (g *Gateway) CreatePortalSession(context.Context, string, string) (string, error) {
	return "https://billing.stripe.com/p/test", nil
}

// EmailSender records sent e-mails.
type EmailSender struct {
	mu   sync.Mutex
	Sent []notify.Email
}

// SendEmail implements notify.EmailSender.
func (s *EmailSender) SendEmail(_ context.Context, e notify.Email) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sent = append(s.Sent, e)

	return "email-test", nil
}

// SMSSender records sent messages.
type SMSSender struct {
	mu     sync.Mutex
	Bodies []string
}

// SendSMS implements notify.SMSSender.
func (s *SMSSender) SendSMS(_ context.Context, _, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Bodies = append(s.Bodies, body)

	return "SM-test", nil
}

