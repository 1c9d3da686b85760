// Package services contains the chirp business logic used by the terminal
// front end. AccountService covers registration, authentication, the
// verification code flows and profile changes; SocialService covers posts,
// follows, likes and comments for the logged in user.
//
// Every error returned from this package matches one of the kinds in
// package common. Raw storage and mail errors are logged here and replaced
// by common.Failure values.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/cryptox"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/notify"
	"github.com/dmitrijs2005/chirp/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chirp/internal/session"
	"github.com/dmitrijs2005/chirp/internal/timex"
	"github.com/dmitrijs2005/chirp/internal/verification"
)

// DefaultListLimit caps timeline, search and profile post lists.
const DefaultListLimit = 50

// Dependencies are the collaborators shared by the services. All fields
// are required.
type Dependencies struct {
	DB       *sql.DB
	Repos    repomanager.RepositoryManager
	Hasher   *cryptox.PasswordHasher
	Codes    *verification.Manager
	Sessions *session.Manager
	Mailer   notify.Dispatcher
	Clock    timex.Clock
	Logger   logging.Logger
}

// Notice carries the outcome of an operation that also tried to send mail.
// Warning is set when the mail could not be sent; the operation itself
// still succeeded.
type Notice struct {
	ExpiresAt time.Time
	Warning   error
}

type base struct {
	Dependencies
}

// currentUser returns the session identity or common.ErrNotLoggedIn.
func (b *base) currentUser() (models.Identity, error) {
	id, ok := b.Sessions.Current()
	if !ok {
		return models.Identity{}, common.ErrNotLoggedIn
	}
	return id, nil
}

// fail logs err when it is a storage problem and returns it in taxonomy
// form. Errors that already carry a non-storage kind pass through.
func (b *base) fail(ctx context.Context, op string, err error) error {
	kind := common.Kind(err)
	if kind != nil && kind != common.ErrStorage {
		return err
	}

	b.Logger.Error(ctx, op+" failed", "error", err)

	var f *common.Failure
	if errors.As(err, &f) {
		return err
	}
	return common.StorageFailure(err)
}

// mailWarning logs a failed send and turns it into a Notice warning.
func (b *base) mailWarning(ctx context.Context, kind string, err error) error {
	b.Logger.Warn(ctx, "notification not delivered", "kind", kind, "error", err)
	if common.Kind(err) != nil {
		return err
	}
	return common.NotificationFailure(err)
}
