package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/pages"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path can run on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Pages(db dbx.DBTX) pages.Repository
	Categories(db dbx.DBTX) categories.Repository
	Files(db dbx.DBTX) files.Repository
	Settings(db dbx.DBTX) settings.Repository
}
