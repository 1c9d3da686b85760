// Package notify sends the emails triggered by account and social events.
// Delivery is best effort: callers log a failed send and carry on.
package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chirp/internal/config"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

// Dispatcher delivers notification emails.
type Dispatcher interface {
	SendActivation(ctx context.Context, email, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, code string, expiresAt time.Time) error
	SendVerification(ctx context.Context, email, code string, expiresAt time.Time) error
	SendFollowerNotice(ctx context.Context, email, followerName string) error
	SendWelcome(ctx context.Context, email, username string) error
}

// New returns an SMTP dispatcher when cfg has mail credentials and a
// LogDispatcher otherwise. The fallback is reported once as a warning.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) Dispatcher {
	if !cfg.MailConfigured() {
		logger.Warn(ctx, "outbound mail is not configured, notifications will only be logged",
			"smtp_host", cfg.SMTPHost, "smtp_port", cfg.SMTPPort)
		return NewLogDispatcher(logger)
	}
	return NewSMTPDispatcher(SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom(),
	}, logger)
}
