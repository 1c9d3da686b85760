// Package comments stores replies to posts.
package comments

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ForPost lists comments oldest first.
	ForPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Count(ctx context.Context, postID string) (int, error)

	DeleteByUser(ctx context.Context, userID string) error
	// DeleteOnPostsOf removes every comment left on posts authored by userID.
	DeleteOnPostsOf(ctx context.Context, userID string) error
}
