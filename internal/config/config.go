// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "RENTFUSION_CONFIG_JSON"

const (
	minJWTSecretLen   = 32
	defaultShutdown   = 5
	defaultTokenTTL   = 24 * time.Hour
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultCacheTTL   = 300 * time.Second
	defaultModel      = "gpt-4-turbo-preview"
	defaultAITimeout  = 30 * time.Second
	redacted          = "********"
)

// secretEnv maps well known environment variables to the config field they override.
var secretEnv = map[string]func(c *Config, v string){ //nolint:gochecknoglobals
	"JWT_SECRET":            func(c *Config, v string) { c.Auth.JWTSecret = v },
	"OPENAI_API_KEY":        func(c *Config, v string) { c.OpenAI.APIKey = v },
	"STRIPE_SECRET_KEY":     func(c *Config, v string) { c.Stripe.SecretKey = v },
	"STRIPE_WEBHOOK_SECRET": func(c *Config, v string) { c.Stripe.WebhookSecret = v },
	"RESEND_API_KEY":        func(c *Config, v string) { c.Email.ResendAPIKey = v },
	"TWILIO_ACCOUNT_SID":    func(c *Config, v string) { c.SMS.AccountSID = v },
	"TWILIO_AUTH_TOKEN":     func(c *Config, v string) { c.SMS.AuthToken = v },
	"TWILIO_PHONE_NUMBER":   func(c *Config, v string) { c.SMS.From = v },
	"TELEGRAM_BOT_TOKEN":    func(c *Config, v string) { c.Telegram.BotToken = v },
	"CRON_SECRET":           func(c *Config, v string) { c.Cron.Secret = v },
	"APP_URL":               func(c *Config, v string) { c.Webserver.AppURL = v },
}

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c   Config
		err error
	)

	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	if jsonConfig := os.Getenv(EnvConfigJSON); jsonConfig != "" {
		c, err = decodeAndMergeConfig(c, jsonConfig)
		if err != nil {
			return c, err
		}
	}

	for name, set := range secretEnv {
		if v := os.Getenv(name); v != "" {
			set(&c, v)
		}
	}

	applyDefaults(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode json config override")
	}

	return c, nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutdown
	}

	if c.Webserver.AppURL == "" {
		c.Webserver.AppURL = c.Webserver.URL
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = EngineSQLite
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}

	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = defaultSessionTTL
	}

	if c.Auth.TOTPIssuer == "" {
		c.Auth.TOTPIssuer = c.Title
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultModel
	}

	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = defaultAITimeout
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaultCacheTTL
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// DumpConfig config as TOML String. Secrets are redacted.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	r := redact(*c)
	if err := toml.NewEncoder(&buffer).Encode(r); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String. Secrets are redacted.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(redact(*c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func redact(c Config) Config {
	for _, s := range []*string{
		&c.DB.Password,
		&c.Auth.JWTSecret,
		&c.Auth.OIDC.ClientSecret,
		&c.OpenAI.APIKey,
		&c.Stripe.SecretKey,
		&c.Stripe.WebhookSecret,
		&c.Email.ResendAPIKey,
		&c.SMS.AuthToken,
		&c.Push.AccessToken,
		&c.Telegram.BotToken,
		&c.Cache.Redis.Password,
		&c.Cron.Secret,
	} {
		if *s != "" {
			*s = redacted
		}
	}

	return c
}

// validate minimal config settings needed to start the daemon.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "", EngineSQLite, EngineMySQL, EnginePostgres:
	default:
		return errors.Wrap(ErrUnsupportedEngine, c.DB.GormEngine)
	}

	if len(c.Auth.JWTSecret) < minJWTSecretLen {
		return errors.Wrap(ErrJWTSecretTooShort, invalidErrMessage)
	}

	switch c.Cache.Backend {
	case "", "memory", "redis", EnginePostgres, EngineMySQL:
	default:
		return errors.Wrap(ErrUnsupportedCacheBackend, c.Cache.Backend)
	}

	return nil
}
