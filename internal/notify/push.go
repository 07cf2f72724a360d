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

const (
	// DefaultExpoURL is the expo push send endpoint.
	DefaultExpoURL = "https://exp.host/--/api/v2/push/send"
	// expo accepts at most 100 messages per request.
	expoChunkSize = 100
	// ExpoDeviceNotRegistered marks a token the app uninstalled.
	ExpoDeviceNotRegistered = "DeviceNotRegistered"
)

// PushMessage is one expo push notification.
type PushMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Badge    int               `json:"badge,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

// PushTicket is the expo answer for one message, in request order.
type PushTicket struct {
	ID      string
	OK      bool
	Message string
	Error   string // expo error code, e.g. DeviceNotRegistered
}

// PushSender delivers push notifications.
type PushSender interface {
	SendPush(ctx context.Context, msgs []PushMessage) ([]PushTicket, error)
}

// ExpoClient talks to the expo push service.
type ExpoClient struct {
	url         string
	accessToken string
	http        *http.Client
}

// NewExpoClient returns a client for url, DefaultExpoURL when empty.
func NewExpoClient(url, accessToken string) *ExpoClient {
	if url == "" {
		url = DefaultExpoURL
	}

	return &ExpoClient{
		url:         url,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// IsExpoPushToken reports whether token looks like an expo push token.
func IsExpoPushToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}

// SendPush implements PushSender. Messages are sent in chunks of 100.
func (c *ExpoClient) SendPush(ctx context.Context, msgs []PushMessage) ([]PushTicket, error) {
	tickets := make([]PushTicket, 0, len(msgs))

	for start := 0; start < len(msgs); start += expoChunkSize {
		end := min(start+expoChunkSize, len(msgs))

		chunk, err := c.send(ctx, msgs[start:end])
		if err != nil {
			return tickets, err
		}

		tickets = append(tickets, chunk...)
	}

	return tickets, nil
}

func (c *ExpoClient) send(ctx context.Context, msgs []PushMessage) ([]PushTicket, error) {
	body, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("expo: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("expo: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("expo: %w", err)
	}

	res := gjson.ParseBytes(raw)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo: status %d: %s", resp.StatusCode, res.Get("errors.0.message").String())
	}

	data := res.Get("data").Array()

	tickets := make([]PushTicket, 0, len(data))
	for _, t := range data {
		tickets = append(tickets, PushTicket{
			ID:      t.Get("id").String(),
			OK:      t.Get("status").String() == "ok",
			Message: t.Get("message").String(),
			Error:   t.Get("details.error").String(),
		})
	}

	return tickets, nil
}
