package config

import (
	"time"

	"github.com/rentfusion/rentfusion/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Auth      Auth
	OpenAI    OpenAI
	Stripe    Stripe
	Email     Email
	SMS       SMS
	Push      Push
	Telegram  Telegram
	Cache     Cache
	RateLimit RateLimit
	Cron      Cron
	Metrics   Metrics
}

// Webserver implement webserver settings.
type Webserver struct {
	Address        string   // listening address, empty listens on all interfaces
	Port           int      // listening port for the webserver
	URL            string   // public base url of the api
	AppURL         string   // public url of the web app, used in redirects and e-mails
	ShutDownTime   int      // wait time in seconds for shutdown
	BodyLimit      int      // max request body size in bytes
	DisableRecover bool     // disable recover middleware
	TrustedProxies []string // proxies allowed to set X-Forwarded-For
	CookieSecure   bool     // set the Secure flag on the session cookie
}

// Auth holds token, session and sign-in provider settings.
type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	SessionTTL time.Duration
	TOTPIssuer string
	OIDC       OIDC
}

// OIDC holds the OpenID Connect provider settings (Google sign-in).
type OIDC struct {
	Enabled      bool
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OpenAI holds the LLM client settings.
type OpenAI struct {
	APIKey  string
	BaseURL string // optional, for proxies and compatible endpoints
	Model   string
	Timeout time.Duration
}

// Stripe holds the payment provider settings.
type Stripe struct {
	SecretKey     string
	WebhookSecret string
	Prices        StripePrices
}

// StripePrices maps every paid tier and billing interval to a stripe price id.
type StripePrices struct {
	BasicMonthly   string
	BasicYearly    string
	PremiumMonthly string
	PremiumYearly  string
}

// Email holds the transactional e-mail settings.
type Email struct {
	ResendAPIKey string
	From         string // sender for account notifications
	AlertsFrom   string // sender for property alerts
}

// SMS holds the twilio settings.
type SMS struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Push holds the expo push settings.
type Push struct {
	ExpoURL     string
	AccessToken string
}

// Telegram holds the bot settings for telegram alerts.
type Telegram struct {
	BotToken string
	APIURL   string
}

// Cache holds the storage backend used for the response cache, sessions and rate limits.
type Cache struct {
	Backend    string // memory, redis, postgres or mysql
	TTL        time.Duration
	Redis      RedisStorage
	Table      string // table name for sql backed storage
	GCInterval time.Duration
}

// RedisStorage holds redis connection settings.
type RedisStorage struct {
	Host     string
	Port     int
	Username string
	Password string
	Database int
}

// RateLimit holds per route request quotas.
type RateLimit struct {
	Enabled bool
	Routes  map[string]Quota
}

// Quota is Max requests per Window.
type Quota struct {
	Max    int
	Window time.Duration
}

// Cron holds scheduled job settings.
type Cron struct {
	Secret         string
	BackupSchedule string // robfig cron spec, empty disables the job
	BackupDir      string
}

// Metrics holds the prometheus endpoint settings.
type Metrics struct {
	Enabled bool
	Path    string
}
