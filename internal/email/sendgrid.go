package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridTransport sends mail through the SendGrid v3 API
type SendGridTransport struct {
	client    *sendgrid.Client
	fromEmail string
}

func NewSendGridTransport(apiKey, fromEmail string) *SendGridTransport {
	return &SendGridTransport{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail("", t.fromEmail)
	to := mail.NewEmail(msg.Name, msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email: sendgrid returned status %d", resp.StatusCode)
	}

	return nil
}
