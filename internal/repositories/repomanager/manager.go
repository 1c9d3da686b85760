// Package repomanager vends repositories bound to a database handle or an
// open transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/repositories/comments"
	"github.com/dmitrijs2005/chirp/internal/repositories/follows"
	"github.com/dmitrijs2005/chirp/internal/repositories/likes"
	"github.com/dmitrijs2005/chirp/internal/repositories/posts"
	"github.com/dmitrijs2005/chirp/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Dialect() dbx.Dialect
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Follows(db dbx.DBTX) follows.Repository
	Likes(db dbx.DBTX) likes.Repository
	Comments(db dbx.DBTX) comments.Repository
}
