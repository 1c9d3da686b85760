// Package posts stores short messages and builds the timeline views.
package posts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chirp/internal/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	UpdateContent(ctx context.Context, id, content string, at time.Time) error

	// Timeline returns posts by userID and by everyone userID follows,
	// newest first.
	Timeline(ctx context.Context, userID string, limit int) ([]*models.Post, error)
	ByUser(ctx context.Context, userID string, limit int) ([]*models.Post, error)
	Search(ctx context.Context, term string, limit int) ([]*models.Post, error)

	DeleteByUser(ctx context.Context, userID string) error
}
