package follows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/repositories/repotest"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFollowGraph(t *testing.T) {
	db := repotest.OpenSQLite(t)
	ctx := context.Background()

	for _, u := range []string{"alice", "bob", "carol"} {
		_, err := db.Exec(`INSERT INTO users (user_id, username, email, password_hash, salt, created_at, updated_at)
			VALUES (?, ?, ?, 'h', 's', ?, ?)`, u, u, u+"@example.com", t0, t0)
		require.NoError(t, err)
	}

	r := NewSQLRepository(db, dbx.SQLite)
	require.NoError(t, r.Add(ctx, "carol", "alice", t0))
	require.NoError(t, r.Add(ctx, "bob", "alice", t0.Add(time.Minute)))
	require.NoError(t, r.Add(ctx, "alice", "bob", t0))

	ok, err := r.Exists(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Exists(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := r.Followers(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username, "ordered by username")
	assert.Equal(t, t0.Add(time.Minute), followers[0].Since)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := r.Following(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].UserID)

	counts, err := r.Counts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.FollowCounts{Followers: 2, Following: 1}, counts)

	require.NoError(t, r.Remove(ctx, "carol", "alice"))
	counts, err = r.Counts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Followers)

	require.NoError(t, r.DeleteByUser(ctx, "alice"))
	counts, err = r.Counts(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.FollowCounts{}, counts, "edges in both directions are gone")
}

func TestDBErrors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	r := NewSQLRepository(db, dbx.Postgres)
	ctx := context.Background()

	mock.ExpectExec(`^DELETE FROM follows WHERE follower_id = \$1 OR followed_id = \$2$`).
		WithArgs("u", "u").
		WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, r.DeleteByUser(ctx, "u"), "db error")

	mock.ExpectQuery(`WHERE f\.followed_id = \$1`).WillReturnError(errors.New("db down"))
	_, err = r.Followers(ctx, "u")
	assert.ErrorContains(t, err, "db error")
}
