package pages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Repository persists pages and their category links.
type Repository interface {
	Create(ctx context.Context, page *models.Page) (*models.Page, error)
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Page, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// List returns one page of rows and the number of rows matching the
	// filter.
	List(ctx context.Context, opts models.ListOptions, publishedOnly bool) ([]*models.Page, int, error)
	Count(ctx context.Context) (int, error)
	SetPublishedAt(ctx context.Context, id string, at *time.Time) error
	ReplaceCategories(ctx context.Context, pageID string, categoryIDs []string) error
}
