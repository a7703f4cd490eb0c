package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskly/internal/dbx"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and owns the schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
