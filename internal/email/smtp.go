package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPTransport sends HTML mail through an SMTP relay with PLAIN auth
type SMTPTransport struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(smtpHost, smtpPort, smtpUser, smtpPassword, fromEmail string) *SMTPTransport {
	if fromEmail == "" {
		fromEmail = smtpUser
	}
	return &SMTPTransport{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		sendMail:     smtp.SendMail,
	}
}

// Send delivers msg. net/smtp has no context support, so ctx is only
// checked before dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if t.smtpUser != "" {
		auth = smtp.PlainAuth("", t.smtpUser, t.smtpPassword, t.smtpHost)
	}

	addr := net.JoinHostPort(t.smtpHost, t.smtpPort)
	if err := t.sendMail(addr, auth, t.fromEmail, []string{msg.To}, t.build(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (t *SMTPTransport) build(msg Message) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		t.fromEmail, msg.To, msg.Subject, msg.HTML,
	))
}
