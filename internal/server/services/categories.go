package services

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmskeeper/internal/server/slug"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name       string
	Slug       string
	CategoryID *string
}

type CategoryService struct {
	db              DB
	repomanager     repomanager.RepositoryManager
	maxSlugAttempts int
	log             logging.Logger
}

func NewCategoryService(db DB, m repomanager.RepositoryManager, maxSlugAttempts int, log logging.Logger) *CategoryService {
	return &CategoryService{
		db:              db,
		repomanager:     m,
		maxSlugAttempts: maxSlugAttempts,
		log:             log.With("component", "categories"),
	}
}

func (s *CategoryService) pickSlug(ctx context.Context, repo categories.Repository, in CategoryInput, current string) (string, error) {
	if in.Slug != "" {
		if in.Slug == current {
			return current, nil
		}
		taken, err := repo.SlugExists(ctx, in.Slug)
		if err != nil {
			return "", err
		}
		if taken {
			return "", common.ErrSlugAlreadyExists
		}
		return in.Slug, nil
	}
	if current != "" {
		return current, nil
	}
	return slug.Resolve(ctx, in.Name, repo.SlugExists, s.maxSlugAttempts)
}

// checkParent verifies the parent of category id exists and is not the
// category itself. An empty id means a category not stored yet.
func (s *CategoryService) checkParent(ctx context.Context, id string, parent *string) error {
	if parent == nil {
		return nil
	}
	if *parent == id {
		return common.ErrCategoryOwnParent
	}
	if _, err := s.repomanager.Categories(s.db).GetByID(ctx, *parent); err != nil {
		return notFound(err, common.ErrParentCategoryNotExist)
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := s.checkParent(ctx, "", in.CategoryID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Categories(s.db)
	slugValue, err := s.pickSlug(ctx, repo, in, "")
	if err != nil {
		return nil, err
	}

	c, err := repo.Create(ctx, &models.Category{Name: in.Name, Slug: slugValue, CategoryID: in.CategoryID})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, in.CategoryID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Categories(s.db)
	slugValue, err := s.pickSlug(ctx, repo, in, c.Slug)
	if err != nil {
		return nil, err
	}

	c.Name, c.Slug, c.CategoryID = in.Name, slugValue, in.CategoryID
	if err := repo.Update(ctx, c); err != nil {
		return nil, notFound(err, common.ErrCategoryNotExist)
	}
	return c, nil
}

// Delete removes a category and returns the removed record.
func (s *CategoryService) Delete(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Categories(s.db).Delete(ctx, id); err != nil {
		return nil, notFound(err, common.ErrCategoryNotExist)
	}
	s.log.Info(ctx, "category deleted", "category_id", id)
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.repomanager.Categories(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, common.ErrCategoryNotExist)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, opts models.ListOptions) (*models.Paginated[*models.Category], error) {
	return s.list(ctx, opts, categories.Filter{Search: opts.Search})
}

// Children lists the direct children of category id.
func (s *CategoryService) Children(ctx context.Context, id string, opts models.ListOptions) (*models.Paginated[*models.Category], error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.list(ctx, opts, categories.Filter{Search: opts.Search, ParentID: id})
}

func (s *CategoryService) list(ctx context.Context, opts models.ListOptions, filter categories.Filter) (*models.Paginated[*models.Category], error) {
	opts = opts.Normalize()
	repo := s.repomanager.Categories(s.db)

	rows, count, err := repo.List(ctx, opts, filter)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(opts, rows, count, total), nil
}
