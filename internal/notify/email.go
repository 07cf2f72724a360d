package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Email is one outgoing e-mail.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers e-mails and returns the provider message id.
type EmailSender interface {
	SendEmail(ctx context.Context, e Email) (string, error)
}

// ResendSender sends e-mail through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender returns a sender for the api key.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

// SendEmail implements EmailSender.
func (s *ResendSender) SendEmail(ctx context.Context, e Email) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.From,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}

	return sent.Id, nil
}
