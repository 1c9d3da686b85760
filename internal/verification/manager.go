// Package verification issues, checks and retires the time-limited codes
// used for account activation, email re-verification and password reset.
//
// Each (user, purpose) pair holds at most one code. The lifecycle is
// NONE -> PENDING -> CONSUMED or EXPIRED; issuing again always starts a new
// PENDING code and discards the old one. Validate never consumes: callers
// finish a successful flow with Consume, which is idempotent.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chirp/internal/repositories/users"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

// CodeLength is the number of symbols in a code.
const CodeLength = 32

// TTLs holds how long a freshly issued code stays usable, per purpose.
type TTLs struct {
	Activation        time.Duration
	EmailVerification time.Duration
	PasswordReset     time.Duration
}

// DefaultTTLs are 24h for activation and email verification, 1h for reset.
var DefaultTTLs = TTLs{
	Activation:        24 * time.Hour,
	EmailVerification: 24 * time.Hour,
	PasswordReset:     time.Hour,
}

func (t TTLs) forPurpose(p models.Purpose) (time.Duration, error) {
	switch p {
	case models.PurposeActivation:
		return t.Activation, nil
	case models.PurposeEmailVerification:
		return t.EmailVerification, nil
	case models.PurposePasswordReset:
		return t.PasswordReset, nil
	}
	return 0, fmt.Errorf("%w: %q", common.ErrUnknownPurpose, p)
}

// Code is a freshly issued verification code.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// generate is a seam so tests can force CSPRNG failures.
var generate = func() (string, error) {
	return common.RandomString(CodeLength, common.Alphanumeric)
}

type Manager struct {
	db    dbx.DBTX
	repos repomanager.RepositoryManager
	clock timex.Clock
	ttls  TTLs
}

func NewManager(db dbx.DBTX, repos repomanager.RepositoryManager, clock timex.Clock, ttls TTLs) *Manager {
	return &Manager{db: db, repos: repos, clock: clock, ttls: ttls}
}

// Bind returns a Manager that runs its statements on db, typically an
// open transaction.
func (m *Manager) Bind(db dbx.DBTX) *Manager {
	c := *m
	c.db = db
	return &c
}

func (m *Manager) users() users.Repository {
	return m.repos.Users(m.db)
}

// Issue stores a new code for (userID, purpose), replacing any pending one,
// and clears the flag the purpose gates.
func (m *Manager) Issue(ctx context.Context, userID string, purpose models.Purpose) (Code, error) {
	ttl, err := m.ttls.forPurpose(purpose)
	if err != nil {
		return Code{}, err
	}

	value, err := generate()
	if err != nil {
		return Code{}, &common.Failure{Kind: common.ErrConfiguration, Cause: fmt.Errorf("code generation: %w", err)}
	}

	now := m.clock.Now()
	code := Code{Value: value, ExpiresAt: now.Add(ttl)}

	if err := m.users().SetVerification(ctx, userID, purpose, code.Value, code.ExpiresAt, now); err != nil {
		return Code{}, common.StorageFailure(err)
	}
	return code, nil
}

// Validate reports whether code is the pending, unexpired code for
// (userID, purpose). A code whose expiry equals the current instant is
// already expired. Unknown users validate as false.
func (m *Manager) Validate(ctx context.Context, userID string, purpose models.Purpose, code string) (bool, error) {
	if !purpose.Valid() {
		return false, fmt.Errorf("%w: %q", common.ErrUnknownPurpose, purpose)
	}

	v, err := m.users().GetVerification(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, common.StorageFailure(err)
	}

	if !v.Pending() || v.Satisfied || code == "" {
		return false, nil
	}
	if !m.clock.Now().Before(v.ExpiresAt) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) == 1, nil
}

// Consume clears the code and sets the gated flag. Consuming twice is
// the same as consuming once.
func (m *Manager) Consume(ctx context.Context, userID string, purpose models.Purpose) error {
	if !purpose.Valid() {
		return fmt.Errorf("%w: %q", common.ErrUnknownPurpose, purpose)
	}
	if err := m.users().ConsumeVerification(ctx, userID, purpose, m.clock.Now()); err != nil {
		return common.StorageFailure(err)
	}
	return nil
}

// Status reports where (userID, purpose) is in its lifecycle.
func (m *Manager) Status(ctx context.Context, userID string, purpose models.Purpose) (models.State, error) {
	if !purpose.Valid() {
		return models.StateNone, fmt.Errorf("%w: %q", common.ErrUnknownPurpose, purpose)
	}

	v, err := m.users().GetVerification(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.StateNone, err
		}
		return models.StateNone, common.StorageFailure(err)
	}

	switch {
	case v.Pending() && !m.clock.Now().Before(v.ExpiresAt):
		return models.StateExpired, nil
	case v.Pending():
		return models.StatePending, nil
	case v.Satisfied:
		return models.StateConsumed, nil
	default:
		return models.StateNone, nil
	}
}
