package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

// LogDispatcher stands in when SMTP is not configured. It records that a
// mail would have been sent, without the code, and reports
// common.ErrMailNotConfigured so callers can warn the user.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) record(ctx context.Context, kind, to string) error {
	d.logger.Warn(ctx, "email not sent", "kind", kind, "to", to)
	return common.ErrMailNotConfigured
}

func (d *LogDispatcher) SendActivation(ctx context.Context, email, _ string, _ time.Time) error {
	return d.record(ctx, msgActivation.template, email)
}

func (d *LogDispatcher) SendPasswordReset(ctx context.Context, email, _ string, _ time.Time) error {
	return d.record(ctx, msgPasswordReset.template, email)
}

func (d *LogDispatcher) SendVerification(ctx context.Context, email, _ string, _ time.Time) error {
	return d.record(ctx, msgVerification.template, email)
}

func (d *LogDispatcher) SendFollowerNotice(ctx context.Context, email, _ string) error {
	return d.record(ctx, msgFollower.template, email)
}

func (d *LogDispatcher) SendWelcome(ctx context.Context, email, _ string) error {
	return d.record(ctx, msgWelcome.template, email)
}
