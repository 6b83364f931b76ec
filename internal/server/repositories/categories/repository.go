package categories

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Filter narrows a category listing. Zero values match everything.
type Filter struct {
	// Search matches a substring of the name, case-insensitively.
	Search string
	// ParentID restricts the listing to direct children of a category.
	ParentID string
}

// Repository persists categories.
type Repository interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, opts models.ListOptions, filter Filter) ([]*models.Category, int, error)
	Count(ctx context.Context) (int, error)
}
