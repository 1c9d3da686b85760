// Package storage opens the application database for the configured
// driver and brings its schema up to date.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/repomanager"
)

// Store bundles the open handle with the repository manager for its dialect.
type Store struct {
	DB    *sql.DB
	Repos repomanager.RepositoryManager
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to dsn with driver (sqlite, pgx or mysql), pings it and
// runs migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := dbx.DialectForDriver(driver)
	if err != nil {
		return nil, err
	}

	if dialect == dbx.MySQL {
		dsn, err = normalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	configurePool(db, dialect)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	repos := repomanager.NewSQLRepositoryManager(dialect)
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{DB: db, Repos: repos}, nil
}

func configurePool(db *sql.DB, dialect dbx.Dialect) {
	if dialect == dbx.SQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
}

// normalizeMySQLDSN makes DATETIME columns scan into time.Time in UTC.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
