package likes

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chirp/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	return n > 0, err
}

func (r *SQLRepository) Add(ctx context.Context, userID, postID string, at time.Time) error {
	return r.exec(ctx, `INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`, userID, postID, at.UTC())
}

func (r *SQLRepository) Remove(ctx context.Context, userID, postID string) error {
	return r.exec(ctx, `DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
}

func (r *SQLRepository) Count(ctx context.Context, postID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID)
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.exec(ctx, `DELETE FROM likes WHERE user_id = ?`, userID)
}

func (r *SQLRepository) DeleteOnPostsOf(ctx context.Context, userID string) error {
	return r.exec(ctx, `DELETE FROM likes WHERE post_id IN (SELECT post_id FROM posts WHERE user_id = ?)`, userID)
}
