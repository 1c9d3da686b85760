package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/cryptox"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chirp/internal/repositories/repotest"
	"github.com/dmitrijs2005/chirp/internal/session"
	"github.com/dmitrijs2005/chirp/internal/timex"
	"github.com/dmitrijs2005/chirp/internal/verification"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type mail struct {
	kind string
	to   string
	code string
	arg  string
}

// recorder is a notify.Dispatcher that keeps what would have been sent.
type recorder struct {
	mu   sync.Mutex
	sent []mail
	err  error
}

func (r *recorder) add(m mail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recorder) SendActivation(_ context.Context, email, code string, _ time.Time) error {
	return r.add(mail{kind: "activation", to: email, code: code})
}

func (r *recorder) SendPasswordReset(_ context.Context, email, code string, _ time.Time) error {
	return r.add(mail{kind: "password_reset", to: email, code: code})
}

func (r *recorder) SendVerification(_ context.Context, email, code string, _ time.Time) error {
	return r.add(mail{kind: "verification", to: email, code: code})
}

func (r *recorder) SendFollowerNotice(_ context.Context, email, followerName string) error {
	return r.add(mail{kind: "follower", to: email, arg: followerName})
}

func (r *recorder) SendWelcome(_ context.Context, email, username string) error {
	return r.add(mail{kind: "welcome", to: email, arg: username})
}

// last returns the most recent mail of kind.
func (r *recorder) last(t *testing.T, kind string) mail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].kind == kind {
			return r.sent[i]
		}
	}
	t.Fatalf("no %s mail sent", kind)
	return mail{}
}

func (r *recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.sent {
		if m.kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	db       *sql.DB
	clock    *timex.ManualClock
	mailer   *recorder
	sessions *session.Manager
	logs     *bytes.Buffer
	account  *AccountService
	social   *SocialService
}

func newDeps(t *testing.T, db *sql.DB, clock *timex.ManualClock, mailer *recorder) (Dependencies, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger, err := logging.New(&logs, "debug", "text")
	require.NoError(t, err)

	repos := repomanager.NewSQLRepositoryManager(dbx.SQLite)
	return Dependencies{
		DB:       db,
		Repos:    repos,
		Hasher:   cryptox.NewPasswordHasher(4),
		Codes:    verification.NewManager(db, repos, clock, verification.DefaultTTLs),
		Sessions: session.NewManager(clock),
		Mailer:   mailer,
		Clock:    clock,
		Logger:   logger,
	}, &logs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.OpenSQLite(t)
	clock := timex.NewManualClock(t0)
	mailer := &recorder{}
	deps, logs := newDeps(t, db, clock, mailer)

	return &fixture{
		db:       db,
		clock:    clock,
		mailer:   mailer,
		sessions: deps.Sessions,
		logs:     logs,
		account:  NewAccountService(deps),
		social:   NewSocialService(deps),
	}
}

// register creates an account for name with password "Passw0rd!".
func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	res, err := f.account.Register(context.Background(), RegisterInput{
		Username: name, Email: name + "@example.com", Password: "Passw0rd!", Confirm: "Passw0rd!",
	})
	require.NoError(t, err)
	require.NoError(t, res.Warning)
	return res.User.ID
}

// login registers name and logs in as them.
func (f *fixture) login(t *testing.T, name string) string {
	t.Helper()
	id := f.register(t, name)
	_, err := f.account.Login(context.Background(), name, "Passw0rd!")
	require.NoError(t, err)
	return id
}

var errSMTPDown = errors.New("dial tcp: connection refused")
