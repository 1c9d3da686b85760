package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPDispatcher renders plain-text mails and hands them to an SMTP relay.
// smtp.SendMail upgrades to STARTTLS when the server offers it, which is
// required before PLAIN auth is attempted against a remote host.
type SMTPDispatcher struct {
	settings SMTPSettings
	logger   logging.Logger
	now      func() time.Time
}

// sendMail is a seam for tests.
var sendMail = smtp.SendMail

func NewSMTPDispatcher(s SMTPSettings, logger logging.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{settings: s, logger: logger, now: time.Now}
}

var errBadRecipient = errors.New("recipient contains line breaks")

func (d *SMTPDispatcher) send(ctx context.Context, to string, msg message, data any) error {
	if strings.ContainsAny(to, "\r\n") {
		return common.NotificationFailure(errBadRecipient)
	}

	body, err := render(msg.template, data)
	if err != nil {
		d.logger.Error(ctx, "failed to render email template", "template", msg.template, "error", err)
		return common.NotificationFailure(fmt.Errorf("render template: %w", err))
	}

	raw := d.compose(to, msg.subject, body)
	addr := net.JoinHostPort(d.settings.Host, strconv.Itoa(d.settings.Port))
	auth := smtp.PlainAuth("", d.settings.Username, d.settings.Password, d.settings.Host)

	if err := sendMail(addr, auth, d.settings.From, []string{to}, raw); err != nil {
		d.logger.Error(ctx, "failed to send email", "template", msg.template, "to", to, "error", err)
		return common.NotificationFailure(fmt.Errorf("send email: %w", err))
	}

	d.logger.Info(ctx, "email sent", "template", msg.template, "to", to)
	return nil
}

func (d *SMTPDispatcher) compose(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + d.settings.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + d.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func (d *SMTPDispatcher) SendActivation(ctx context.Context, email, code string, expiresAt time.Time) error {
	return d.send(ctx, email, msgActivation, codeData{Code: code, ExpiresAt: expiresAt})
}

func (d *SMTPDispatcher) SendPasswordReset(ctx context.Context, email, code string, expiresAt time.Time) error {
	return d.send(ctx, email, msgPasswordReset, codeData{Code: code, ExpiresAt: expiresAt})
}

func (d *SMTPDispatcher) SendVerification(ctx context.Context, email, code string, expiresAt time.Time) error {
	return d.send(ctx, email, msgVerification, codeData{Code: code, ExpiresAt: expiresAt})
}

func (d *SMTPDispatcher) SendFollowerNotice(ctx context.Context, email, followerName string) error {
	return d.send(ctx, email, msgFollower, struct{ Follower string }{followerName})
}

func (d *SMTPDispatcher) SendWelcome(ctx context.Context, email, username string) error {
	return d.send(ctx, email, msgWelcome, struct{ Username string }{username})
}
