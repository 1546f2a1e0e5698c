package di

import (
	"log/slog"
	"time"

	"event_backend/internal/feature/notification"
	"event_backend/internal/platform/config"
	"event_backend/internal/platform/mailer"
	"event_backend/internal/platform/metrics"
	"event_backend/internal/shared/ratelimiter"
)

const mailTimeout = 10 * time.Second

// NewMailer returns the Resend mailer when configured, and the log mailer otherwise.
func NewMailer(cfg config.Mail) notification.Mailer {
	if cfg.Provider == "resend" {
		return mailer.NewResendMailer(cfg.ResendAPIKey, cfg.From, mailTimeout)
	}
	slog.Info("mail provider is log; notifications are written to the log only")
	return mailer.NewLogMailer(slog.Default())
}

// NewDispatcher creates the notification dispatcher. Sends are throttled to
// cfg.RatePerSec and counted on m.
func NewDispatcher(cfg config.Mail, m *metrics.Metrics) *notification.Dispatcher {
	return notification.NewDispatcher(NewMailer(cfg), notification.Options{
		QueueSize:   cfg.QueueSize,
		Workers:     cfg.Workers,
		SendTimeout: mailTimeout,
		Limiter:     ratelimiter.NewRateLimiter(cfg.RatePerSec, 1),
		Recorder:    m,
	})
}
