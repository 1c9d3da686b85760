package users

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

const userColumns = `user_id, username, email, password_hash, salt, is_active, is_email_verified, created_at, updated_at`

type codeColumns struct {
	code, expires, flag string
}

var purposeColumns = map[models.Purpose]codeColumns{
	models.PurposeActivation:        {"activation_code", "activation_expires_at", "is_active"},
	models.PurposeEmailVerification: {"email_verification_code", "email_verification_expires_at", "is_email_verified"},
	models.PurposePasswordReset:     {"password_reset_code", "password_reset_expires_at", "password_reset_done"},
}

func columnsFor(p models.Purpose) (codeColumns, error) {
	c, ok := purposeColumns[p]
	if !ok {
		return codeColumns{}, fmt.Errorf("%w: %q", common.ErrUnknownPurpose, p)
	}
	return c, nil
}

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

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt,
		&u.IsActive, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	query := r.dialect.Rebind(
		`INSERT INTO users (user_id, username, email, password_hash, salt, is_active, is_email_verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Salt,
		user.IsActive, user.IsEmailVerified, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := r.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "user_id", id)
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *SQLRepository) taken(ctx context.Context, column, value, exceptID string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE ` + column + ` = ?`
	args := []any{value}
	if exceptID != "" {
		query += ` AND user_id <> ?`
		args = append(args, exceptID)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return r.taken(ctx, "username", username, exceptID)
}

func (r *SQLRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	return r.taken(ctx, "email", email, exceptID)
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateCredential writes hash and salt in a single statement and drops
// any pending password reset code.
func (r *SQLRepository) UpdateCredential(ctx context.Context, id, hash, salt string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, password_reset_code = NULL,
		 password_reset_expires_at = NULL, updated_at = ? WHERE user_id = ?`,
		hash, salt, at.UTC(), id)
}

func (r *SQLRepository) UpdateUsername(ctx context.Context, id, username string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET username = ?, updated_at = ? WHERE user_id = ?`,
		username, at.UTC(), id)
}

// UpdateEmail also drops the verified flag and the pending verification
// and password reset codes, since they were mailed to the old address.
func (r *SQLRepository) UpdateEmail(ctx context.Context, id, email string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET email = ?, is_email_verified = ?, email_verification_code = NULL,
		 email_verification_expires_at = NULL, password_reset_code = NULL,
		 password_reset_expires_at = NULL, updated_at = ? WHERE user_id = ?`,
		email, false, at.UTC(), id)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM users WHERE user_id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Search matches term as a substring of the username, case-insensitively.
func (r *SQLRepository) Search(ctx context.Context, term string, limit int) ([]*models.User, error) {
	cond, pattern := r.dialect.Contains("username", term)
	query := r.dialect.Rebind(
		`SELECT ` + userColumns + ` FROM users
		 WHERE ` + cond + `
		 ORDER BY username
		 LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u.Sanitized())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) GetVerification(ctx context.Context, id string, purpose models.Purpose) (*models.Verification, error) {
	cols, err := columnsFor(purpose)
	if err != nil {
		return nil, err
	}

	query := r.dialect.Rebind(
		`SELECT ` + cols.code + `, ` + cols.expires + `, ` + cols.flag + ` FROM users WHERE user_id = ?`)

	var (
		code    sql.NullString
		expires sql.NullTime
		v       models.Verification
	)
	err = r.db.QueryRowContext(ctx, query, id).Scan(&code, &expires, &v.Satisfied)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if code.Valid && expires.Valid {
		v.Code = code.String
		v.ExpiresAt = expires.Time.UTC()
	}
	return &v, nil
}

// SetVerification stores a new pending code, replacing any previous one,
// and clears the gated flag. One statement, so the swap is atomic.
func (r *SQLRepository) SetVerification(ctx context.Context, id string, purpose models.Purpose, code string, expiresAt, at time.Time) error {
	cols, err := columnsFor(purpose)
	if err != nil {
		return err
	}
	return r.exec(ctx,
		`UPDATE users SET `+cols.code+` = ?, `+cols.expires+` = ?, `+cols.flag+` = ?, updated_at = ? WHERE user_id = ?`,
		code, expiresAt.UTC(), false, at.UTC(), id)
}

// ConsumeVerification clears the code and sets the gated flag. Running it
// twice leaves the same state.
func (r *SQLRepository) ConsumeVerification(ctx context.Context, id string, purpose models.Purpose, at time.Time) error {
	cols, err := columnsFor(purpose)
	if err != nil {
		return err
	}
	return r.exec(ctx,
		`UPDATE users SET `+cols.code+` = NULL, `+cols.expires+` = NULL, `+cols.flag+` = ?, updated_at = ? WHERE user_id = ?`,
		true, at.UTC(), id)
}
