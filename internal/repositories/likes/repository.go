// Package likes records which user liked which post.
package likes

import (
	"context"
	"time"
)

type Repository interface {
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Add(ctx context.Context, userID, postID string, at time.Time) error
	Remove(ctx context.Context, userID, postID string) error
	Count(ctx context.Context, postID string) (int, error)

	DeleteByUser(ctx context.Context, userID string) error
	// DeleteOnPostsOf removes every like given to posts authored by userID.
	DeleteOnPostsOf(ctx context.Context, userID string) error
}
