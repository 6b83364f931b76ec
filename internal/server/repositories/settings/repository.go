package settings

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Repository reads and updates the seeded site settings. Settings are
// never created or deleted at runtime.
type Repository interface {
	List(ctx context.Context) ([]*models.Setting, error)
	GetByID(ctx context.Context, id string) (*models.Setting, error)
	GetByName(ctx context.Context, name string) (*models.Setting, error)
	UpdateValue(ctx context.Context, name string, value *string) error
}
