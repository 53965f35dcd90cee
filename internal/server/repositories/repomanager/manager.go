// Package repomanager wires repositories to database handles and owns
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
)

// RepositoryManager constructs repositories over a given handle. Passing a
// dbx.DBTX lets the same repository run against the pool or inside an open
// transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
