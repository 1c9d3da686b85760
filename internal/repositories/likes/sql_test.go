package likes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/repotest"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLikesLifecycle(t *testing.T) {
	db := repotest.OpenSQLite(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO users (user_id, username, email, password_hash, salt, created_at, updated_at)
		VALUES ('alice', 'alice', 'a@example.com', 'h', 's', ?, ?), ('bob', 'bob', 'b@example.com', 'h', 's', ?, ?)`, t0, t0, t0, t0)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO posts (post_id, user_id, content, created_at, updated_at)
		VALUES ('pa', 'alice', 'by alice', ?, ?), ('pb', 'bob', 'by bob', ?, ?)`, t0, t0, t0, t0)
	require.NoError(t, err)

	r := NewSQLRepository(db, dbx.SQLite)

	ok, err := r.Exists(ctx, "bob", "pa")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Add(ctx, "bob", "pa", t0))
	require.NoError(t, r.Add(ctx, "alice", "pa", t0))
	require.NoError(t, r.Add(ctx, "alice", "pb", t0))
	require.Error(t, r.Add(ctx, "bob", "pa", t0), "primary key prevents double likes")

	ok, err = r.Exists(ctx, "bob", "pa")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := r.Count(ctx, "pa")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Remove(ctx, "bob", "pa"))
	n, err = r.Count(ctx, "pa")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.DeleteOnPostsOf(ctx, "alice"))
	n, err = r.Count(ctx, "pa")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.DeleteByUser(ctx, "alice"))
	n, err = r.Count(ctx, "pb")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDBErrors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := NewSQLRepository(db, dbx.Postgres)
	ctx := context.Background()

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM likes WHERE user_id = \$1 AND post_id = \$2$`).WillReturnError(errors.New("db down"))
	_, err = r.Exists(ctx, "u", "p")
	assert.ErrorContains(t, err, "db error")

	mock.ExpectExec(`^INSERT INTO likes`).WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, r.Add(ctx, "u", "p", t0), "db error")
}
