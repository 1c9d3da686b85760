// Package follows stores the directed follower graph.
package follows

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chirp/internal/models"
)

type Repository interface {
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	Add(ctx context.Context, followerID, followedID string, at time.Time) error
	Remove(ctx context.Context, followerID, followedID string) error

	// Followers lists who follows userID; Following lists whom userID
	// follows. Both are ordered by username.
	Followers(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	Following(ctx context.Context, userID string) ([]*models.FollowEntry, error)
	Counts(ctx context.Context, userID string) (models.FollowCounts, error)

	// DeleteByUser removes edges in both directions.
	DeleteByUser(ctx context.Context, userID string) error
}
