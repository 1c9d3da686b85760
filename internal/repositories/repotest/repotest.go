// Package repotest opens throwaway migrated databases for repository and
// service tests.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/migrations"
)

// OpenSQLite returns an in-memory SQLite database with the schema applied.
// Each call gets its own database; it is closed when the test ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_time_format=sqlite", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	// one connection keeps the in-memory database alive and serializes
	// access the way the desktop client does
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db, dbx.SQLite))
	return db
}
