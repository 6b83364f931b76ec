// Package services contains server-side business logic: accounts, the
// password reset flow, pages, categories, files and settings. Handlers in
// the http package are thin adapters over these types.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// DB is the database handle services run queries and transactions on.
// *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// Notifier delivers account mail.
type Notifier interface {
	SendResetRequest(ctx context.Context, user *models.User, url string) error
	SendNewPassword(ctx context.Context, user *models.User, password string) error
}

// notFound replaces common.ErrorNotFound with the entity specific error.
func notFound(err, replacement error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return replacement
	}
	return err
}
