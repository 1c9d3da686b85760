package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/cryptox"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chirp/internal/repositories/repotest"
	"github.com/dmitrijs2005/chirp/internal/services"
	"github.com/dmitrijs2005/chirp/internal/session"
	"github.com/dmitrijs2005/chirp/internal/timex"
	"github.com/dmitrijs2005/chirp/internal/verification"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// codeMailer keeps the last code mailed to each address.
type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (m *codeMailer) keep(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

func (m *codeMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

func (m *codeMailer) SendActivation(_ context.Context, email, code string, _ time.Time) error {
	return m.keep(email, code)
}
func (m *codeMailer) SendPasswordReset(_ context.Context, email, code string, _ time.Time) error {
	return m.keep(email, code)
}
func (m *codeMailer) SendVerification(_ context.Context, email, code string, _ time.Time) error {
	return m.keep(email, code)
}
func (m *codeMailer) SendFollowerNotice(context.Context, string, string) error { return m.err }
func (m *codeMailer) SendWelcome(context.Context, string, string) error        { return m.err }

type harness struct {
	app    *App
	out    *bytes.Buffer
	logs   *bytes.Buffer
	mailer *codeMailer
}

// newHarness builds an App over a fresh database that reads script.
// Passwords are read from the script too.
func newHarness(t *testing.T, script ...string) *harness {
	t.Helper()
	stubTerminal(t, false, nil, errors.New("no terminal in tests"))

	db := repotest.OpenSQLite(t)
	clock := timex.NewManualClock(t0)
	repos := repomanager.NewSQLRepositoryManager(dbx.SQLite)

	var logs bytes.Buffer
	logger, err := logging.New(&logs, "debug", "json")
	require.NoError(t, err)

	mailer := &codeMailer{}
	sessions := session.NewManager(clock)
	deps := services.Dependencies{
		DB:       db,
		Repos:    repos,
		Hasher:   cryptox.NewPasswordHasher(4),
		Codes:    verification.NewManager(db, repos, clock, verification.DefaultTTLs),
		Sessions: sessions,
		Mailer:   mailer,
		Clock:    clock,
		Logger:   logger,
	}

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	app := NewApp(services.NewAccountService(deps), services.NewSocialService(deps), sessions, logger, in, &out)
	return &harness{app: app, out: &out, logs: &logs, mailer: mailer}
}

func TestApp_RunScript(t *testing.T) {
	h := newHarness(t,
		"timeline",
		"register",
		"alice",
		"alice@example.com",
		"Passw0rd!",
		"Passw0rd!",
		"login alice",
		"Passw0rd!",
		"post hello #chirp",
		"timeline",
		"search #chirp",
		"whoami",
		"logout",
		"exit",
	)

	h.app.Run(context.Background())
	out := h.out.String()

	assert.Contains(t, out, "Welcome to chirp")
	assert.Contains(t, out, "Please log in first.")
	assert.Contains(t, out, "Account alice created.")
	assert.Contains(t, out, "Logged in as alice.")
	assert.Contains(t, out, "not activated yet")
	assert.Contains(t, out, "chirp (alice)> ")
	assert.Contains(t, out, "Posted [")
	assert.Equal(t, 2, strings.Count(out, "  hello #chirp\n"), "timeline and search both show the post")
	assert.Contains(t, out, "alice <alice@example.com>")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "Bye!")

	assert.NotContains(t, h.logs.String(), "Passw0rd!")
	assert.Contains(t, h.logs.String(), `"session_id"`)
}

func TestApp_ActivateAndReset(t *testing.T) {
	h := newHarness(t,
		"alice", "alice@example.com", "Passw0rd!", "Passw0rd!",
	)
	ctx := context.Background()

	require.NoError(t, h.app.Register(ctx, nil))
	code := h.mailer.code("alice@example.com")
	require.NotEmpty(t, code)

	assert.Error(t, h.app.Activate(ctx, []string{"alice", "bad"}))
	assert.Contains(t, h.out.String(), "Invalid or expired code.")

	require.NoError(t, h.app.Activate(ctx, []string{"alice", code}))
	assert.Contains(t, h.out.String(), "Account activated.")

	require.NoError(t, h.app.ForgotPassword(ctx, []string{"alice@example.com"}))
	reset := h.mailer.code("alice@example.com")
	require.NotEqual(t, code, reset)

	h.app.reader = rdr(reset + "\nN3w-pass\nN3w-pass\nN3w-pass\n")
	require.NoError(t, h.app.ResetPassword(ctx, []string{"alice@example.com"}))
	assert.Contains(t, h.out.String(), "Password updated.")

	require.NoError(t, h.app.Login(ctx, []string{"alice"}))
	assert.Contains(t, h.out.String(), "Logged in as alice.")
}

func TestApp_SocialCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, name := range []string{"bob", "alice"} {
		h.app.reader = rdr(fmt.Sprintf("%s\n%s@example.com\npw\npw\n", name, name))
		require.NoError(t, h.app.Register(ctx, nil))
	}

	h.app.reader = rdr("pw\n")
	require.NoError(t, h.app.Login(ctx, []string{"alice"}))

	require.NoError(t, h.app.Follow(ctx, []string{"@bob"}))
	assert.Contains(t, h.out.String(), "You follow @bob.")

	require.NoError(t, h.app.Following(ctx, nil))
	assert.Contains(t, h.out.String(), "@bob (since ")

	require.NoError(t, h.app.Profile(ctx, []string{"bob"}))
	assert.Contains(t, h.out.String(), "followers: 1, following: 0")
	assert.Contains(t, h.out.String(), "you follow this user")

	h.app.reader = rdr("line one\nline two\n\n")
	require.NoError(t, h.app.Post(ctx, nil))

	assert.ErrorIs(t, h.app.Like(ctx, nil), common.ErrRequiredField)
	assert.Contains(t, h.out.String(), "Usage: like <post-id>")

	assert.Error(t, h.app.Like(ctx, []string{"nope"}))
	assert.Contains(t, h.out.String(), "Malformed id: post_id.")

	require.NoError(t, h.app.Users(ctx, []string{"bo"}))
	assert.Contains(t, h.out.String(), "@bob\n")

	assert.Error(t, h.app.Follow(ctx, []string{"alice"}))
	assert.Contains(t, h.out.String(), "Cannot follow yourself.")

	require.NoError(t, h.app.Unfollow(ctx, []string{"bob"}))
	assert.Contains(t, h.out.String(), "You no longer follow @bob.")
}

func TestApp_DeleteAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.app.reader = rdr("alice\nalice@example.com\npw\npw\npw\n")
	require.NoError(t, h.app.Register(ctx, nil))
	require.NoError(t, h.app.Login(ctx, []string{"alice"}))

	h.app.reader = rdr("no\n")
	require.NoError(t, h.app.DeleteAccount(ctx, nil))
	assert.Contains(t, h.out.String(), "Cancelled.")
	assert.True(t, h.app.isLoggedIn())

	h.app.reader = rdr("yes\nwrong\n")
	assert.ErrorIs(t, h.app.DeleteAccount(ctx, nil), common.ErrInvalidCredentials)

	h.app.reader = rdr("yes\npw\n")
	require.NoError(t, h.app.DeleteAccount(ctx, nil))
	assert.Contains(t, h.out.String(), "Your account was deleted.")
	assert.False(t, h.app.isLoggedIn())
}

func TestApp_MailWarning(t *testing.T) {
	h := newHarness(t, "alice", "alice@example.com", "pw", "pw")
	h.mailer.err = common.ErrMailNotConfigured

	require.NoError(t, h.app.Register(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Warning: email is not configured")
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", common.ErrUsernameTaken, "Username is already taken."},
		{"wrapped validation", fmt.Errorf("%w: username", common.ErrRequiredField), "Required field is empty: username."},
		{"authentication", common.ErrInvalidCredentials, "Invalid username or password."},
		{"mail not configured", common.ErrMailNotConfigured, "Email is not configured, so this feature is unavailable."},
		{"configuration", common.ErrMalformedHash, "This feature is unavailable because of a configuration problem. See the log for details."},
		{"storage", common.StorageFailure(errors.New("pq: password authentication failed for user chirp")), "The database could not complete the request. Please try again."},
		{"notification", common.NotificationFailure(errors.New("535 auth")), "The email could not be sent."},
		{"unknown", errors.New("boom"), "Unexpected error. See the log for details."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}
