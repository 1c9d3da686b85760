package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
)

const selectPosts = `SELECT p.post_id, p.user_id, u.username, p.content, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.post_id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.post_id)
	FROM posts p
	JOIN users u ON u.user_id = p.user_id`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.LikeCount, &p.CommentCount)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *SQLRepository) Create(ctx context.Context, post *models.Post) error {
	query := r.dialect.Rebind(`INSERT INTO posts (post_id, user_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, post.ID, post.UserID, post.Content, post.CreatedAt.UTC(), post.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	query := r.dialect.Rebind(selectPosts + ` WHERE p.post_id = ?`)

	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) UpdateContent(ctx context.Context, id, content string, at time.Time) error {
	query := r.dialect.Rebind(`UPDATE posts SET content = ?, updated_at = ? WHERE post_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, content, at.UTC(), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Timeline(ctx context.Context, userID string, limit int) ([]*models.Post, error) {
	return r.list(ctx, selectPosts+`
	WHERE p.user_id = ? OR p.user_id IN (SELECT followed_id FROM follows WHERE follower_id = ?)
	ORDER BY p.created_at DESC
	LIMIT ?`, userID, userID, limit)
}

func (r *SQLRepository) ByUser(ctx context.Context, userID string, limit int) ([]*models.Post, error) {
	return r.list(ctx, selectPosts+`
	WHERE p.user_id = ?
	ORDER BY p.created_at DESC
	LIMIT ?`, userID, limit)
}

// Search matches term as a substring of the content. A hashtag search is
// just a term that starts with '#'.
func (r *SQLRepository) Search(ctx context.Context, term string, limit int) ([]*models.Post, error) {
	cond, pattern := r.dialect.Contains("p.content", term)
	return r.list(ctx, selectPosts+`
	WHERE `+cond+`
	ORDER BY p.created_at DESC
	LIMIT ?`, pattern, limit)
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := r.dialect.Rebind(`DELETE FROM posts WHERE user_id = ?`)

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
