package users

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Repository persists user accounts. Lookups of a missing user return
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, password string) error
	SetToken(ctx context.Context, id string, token *string) error
	Delete(ctx context.Context, id string) error
}
