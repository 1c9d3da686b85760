// Package migrations embeds the goose schema migrations, one directory per
// SQL dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/chirp/internal/dbx"
)

//go:embed sqlite3/*.sql postgres/*.sql mysql/*.sql
var Migrations embed.FS

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	fsys, err := fs.Sub(Migrations, string(dialect))
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.Dialect(dialect), db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
