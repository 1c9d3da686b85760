// Package users is the user directory: CRUD over the users table plus the
// per-purpose verification code columns.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chirp/internal/models"
)

// Repository is implemented by SQLRepository. Lookups return
// common.ErrorNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UsernameTaken and EmailTaken ignore the row with exceptID so a user
	// can keep their own name. Pass "" to check against everyone.
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)

	UpdateCredential(ctx context.Context, id, hash, salt string, at time.Time) error
	UpdateUsername(ctx context.Context, id, username string, at time.Time) error
	UpdateEmail(ctx context.Context, id, email string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string, limit int) ([]*models.User, error)

	GetVerification(ctx context.Context, id string, purpose models.Purpose) (*models.Verification, error)
	SetVerification(ctx context.Context, id string, purpose models.Purpose, code string, expiresAt, at time.Time) error
	ConsumeVerification(ctx context.Context, id string, purpose models.Purpose, at time.Time) error
}
