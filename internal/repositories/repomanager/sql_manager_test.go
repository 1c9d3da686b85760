package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/comments"
	"github.com/dmitrijs2005/chirp/internal/repositories/follows"
	"github.com/dmitrijs2005/chirp/internal/repositories/likes"
	"github.com/dmitrijs2005/chirp/internal/repositories/posts"
	"github.com/dmitrijs2005/chirp/internal/repositories/users"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	var m RepositoryManager = NewSQLRepositoryManager(dbx.Postgres)
	assert.Equal(t, dbx.Postgres, m.Dialect())

	var _ users.Repository = m.Users(db)
	var _ posts.Repository = m.Posts(db)
	var _ follows.Repository = m.Follows(db)
	var _ likes.Repository = m.Likes(db)
	var _ comments.Repository = m.Comments(db)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Posts(db))
	assert.NotNil(t, m.Follows(db))
	assert.NotNil(t, m.Likes(db))
	assert.NotNil(t, m.Comments(db))
}

func TestRunMigrations_PassesDialect(t *testing.T) {
	db := newDB(t)

	orig := migrateUp
	t.Cleanup(func() { migrateUp = orig })

	var got dbx.Dialect
	migrateUp = func(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
		got = d
		return nil
	}

	require.NoError(t, NewSQLRepositoryManager(dbx.MySQL).RunMigrations(context.Background(), db))
	assert.Equal(t, dbx.MySQL, got)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := migrateUp
	t.Cleanup(func() { migrateUp = orig })
	migrateUp = func(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
		return errors.New("boom")
	}

	err := NewSQLRepositoryManager(dbx.Postgres).RunMigrations(context.Background(), db)
	require.EqualError(t, err, "boom")
}

func TestRunMigrations_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", "file:repomanager_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m := NewSQLRepositoryManager(dbx.SQLite)
	require.NoError(t, m.RunMigrations(context.Background(), db))

	taken, err := m.Users(db).UsernameTaken(context.Background(), "nobody", "")
	require.NoError(t, err)
	assert.False(t, taken)
}
