// Package mailer delivers plain-text emails through an external provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"

	platformhttp "event_backend/internal/platform/http"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a mailer bound to apiKey. Each request is bounded by timeout.
func NewResendMailer(apiKey, from string, timeout time.Duration) *ResendMailer {
	return &ResendMailer{
		client: resend.NewCustomClient(platformhttp.NewHTTPClient(timeout), apiKey),
		from:   from,
	}
}

// Send delivers m. Rate limit responses are reported but not retried.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		var rl *resend.RateLimitError
		if errors.As(err, &rl) {
			return fmt.Errorf("resend rate limit exceeded (limit %s, reset %ss): %w", rl.Limit, rl.Reset, err)
		}
		return fmt.Errorf("resend send: %w", err)
	}
	slog.Debug("email sent", "provider", "resend", "id", sent.Id, "to", msg.To)
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used in
// development and when no provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a LogMailer. A nil logger uses slog.Default().
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs msg and always succeeds unless ctx is done.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("email", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
