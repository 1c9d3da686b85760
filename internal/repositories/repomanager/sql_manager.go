package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/comments"
	"github.com/dmitrijs2005/chirp/internal/repositories/follows"
	"github.com/dmitrijs2005/chirp/internal/repositories/likes"
	"github.com/dmitrijs2005/chirp/internal/repositories/migrations"
	"github.com/dmitrijs2005/chirp/internal/repositories/posts"
	"github.com/dmitrijs2005/chirp/internal/repositories/users"
)

// SQLRepositoryManager vends database/sql repositories for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// NewSQLRepositoryManager constructs a manager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Follows(db dbx.DBTX) follows.Repository {
	return follows.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Likes(db dbx.DBTX) likes.Repository {
	return likes.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewSQLRepository(db, m.dialect)
}

// migrateUp is a seam for testing the goose runner.
var migrateUp = migrations.Up

// RunMigrations applies the embedded goose migrations for the manager's
// dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.dialect)
}
