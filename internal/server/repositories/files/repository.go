package files

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Repository persists metadata of uploaded files.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByPath(ctx context.Context, path string) (*models.File, error)
	// List matches search against the title.
	List(ctx context.Context, opts models.ListOptions) ([]*models.File, int, error)
	Count(ctx context.Context) (int, error)
}
