package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSMaxLen is the longest body sent as one message.
const SMSMaxLen = 160

// SMSSender delivers text messages and returns the provider message id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// TwilioSender sends sms through the Twilio messaging API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender returns a sender for the account.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// SendSMS implements SMSSender. The twilio client is not context aware.
func (s *TwilioSender) SendSMS(_ context.Context, to, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: %w", err)
	}

	var sid string
	if msg.Sid != nil {
		sid = *msg.Sid
	}

	if msg.Status != nil && *msg.Status == "failed" {
		return sid, errors.New("twilio: message failed")
	}

	return sid, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
