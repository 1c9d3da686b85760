package follows

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	query := r.dialect.Rebind(`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?`)

	var n int
	if err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Add(ctx context.Context, followerID, followedID string, at time.Time) error {
	query := r.dialect.Rebind(`INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, followerID, followedID, at.UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Remove(ctx context.Context, followerID, followedID string) error {
	query := r.dialect.Rebind(`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) list(ctx context.Context, joinOn, whereCol, userID string) ([]*models.FollowEntry, error) {
	query := r.dialect.Rebind(
		`SELECT u.user_id, u.username, f.created_at
		 FROM follows f
		 JOIN users u ON u.user_id = f.` + joinOn + `
		 WHERE f.` + whereCol + ` = ?
		 ORDER BY u.username`)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.FollowEntry
	for rows.Next() {
		e := &models.FollowEntry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.Since); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Since = e.Since.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Followers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return r.list(ctx, "follower_id", "followed_id", userID)
}

func (r *SQLRepository) Following(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	return r.list(ctx, "followed_id", "follower_id", userID)
}

func (r *SQLRepository) Counts(ctx context.Context, userID string) (models.FollowCounts, error) {
	query := r.dialect.Rebind(
		`SELECT
		 (SELECT COUNT(*) FROM follows WHERE followed_id = ?),
		 (SELECT COUNT(*) FROM follows WHERE follower_id = ?)`)

	var c models.FollowCounts
	if err := r.db.QueryRowContext(ctx, query, userID, userID).Scan(&c.Followers, &c.Following); err != nil {
		return models.FollowCounts{}, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := r.dialect.Rebind(`DELETE FROM follows WHERE follower_id = ? OR followed_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, userID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
