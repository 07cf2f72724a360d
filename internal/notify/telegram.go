package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTelegramURL is the bot api base url.
const DefaultTelegramURL = "https://api.telegram.org"

// TelegramSender delivers chat messages and returns the message id.
type TelegramSender interface {
	SendTelegram(ctx context.Context, chatID, text string) (string, error)
}

// TelegramClient calls sendMessage of the telegram bot api.
type TelegramClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewTelegramClient returns a client for the bot token.
func NewTelegramClient(apiURL, token string) *TelegramClient {
	if apiURL == "" {
		apiURL = DefaultTelegramURL
	}

	return &TelegramClient{
		baseURL: strings.TrimSuffix(apiURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendTelegram implements TelegramSender.
func (c *TelegramClient) SendTelegram(ctx context.Context, chatID, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": false,
	})
	if err != nil {
		return "", fmt.Errorf("telegram: %w", err)
	}

	url := c.baseURL + "/bot" + c.token + "/sendMessage"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("telegram: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// the url carries the bot token
		return "", fmt.Errorf("telegram: request failed: %w", redactToken(err, c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("telegram: %w", err)
	}

	res := gjson.ParseBytes(raw)
	if !res.Get("ok").Bool() {
		return "", fmt.Errorf("telegram: %s", res.Get("description").String())
	}

	id := res.Get("result.message_id")
	if !id.Exists() {
		return "", fmt.Errorf("telegram: no message id")
	}

	return id.String(), nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}

	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}
