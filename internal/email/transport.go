package email

import (
	"context"
	"fmt"

	"github.com/redmonkez12/task-manager-api/internal/config"
	"github.com/redmonkez12/task-manager-api/internal/logging"
)

// Transport delivers one message to an external provider
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// NewTransport builds the transport selected by EMAIL_TRANSPORT
func NewTransport(cfg config.EmailConfig, logger *logging.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.EmailTransportSMTP:
		return NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From), nil
	case config.EmailTransportSendGrid:
		return NewSendGridTransport(cfg.SendGridAPIKey, cfg.From), nil
	case config.EmailTransportLog:
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.Transport)
	}
}

// LogTransport writes messages to the log instead of sending them.
// Used in development when no provider is configured.
type LogTransport struct {
	logger *logging.Logger
}

func NewLogTransport(logger *logging.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.Info("email not sent, log transport",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
