package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/pages"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmskeeper/internal/server/slug"
)

// PageInput carries the editable fields of a page. An empty Slug lets the
// service pick one.
type PageInput struct {
	Name            string
	Content         string
	IsPage          bool
	Template        models.Template
	Slug            string
	Thumbnail       *string
	MetaTitle       *string
	MetaDescription *string
	Categories      []string
}

func (in PageInput) apply(p *models.Page) {
	p.Name = in.Name
	p.Content = in.Content
	p.IsPage = in.IsPage
	p.Template = in.Template
	if p.Template == "" {
		p.Template = models.TemplateBasic
	}
	p.Thumbnail = in.Thumbnail
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	p.Categories = in.Categories
	if p.Categories == nil {
		p.Categories = []string{}
	}
}

type PageService struct {
	db              DB
	repomanager     repomanager.RepositoryManager
	maxSlugAttempts int
	log             logging.Logger
	now             func() time.Time
}

func NewPageService(db DB, m repomanager.RepositoryManager, maxSlugAttempts int, log logging.Logger) *PageService {
	return &PageService{
		db:              db,
		repomanager:     m,
		maxSlugAttempts: maxSlugAttempts,
		log:             log.With("component", "pages"),
		now:             time.Now,
	}
}

// pickSlug returns the slug to store. An explicit slug must be free unless
// it is the page's current one; without one an update keeps the current
// slug and a create derives one from the name.
func (s *PageService) pickSlug(ctx context.Context, repo pages.Repository, in PageInput, current string) (string, error) {
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

// Create stores a new page authored by author together with its category
// links.
func (s *PageService) Create(ctx context.Context, author *models.User, in PageInput) (*models.Page, error) {
	slugValue, err := s.pickSlug(ctx, s.repomanager.Pages(s.db), in, "")
	if err != nil {
		return nil, err
	}

	page := &models.Page{Slug: slugValue, UserID: &author.ID}
	in.apply(page)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Pages(tx)
		if _, err := repo.Create(ctx, page); err != nil {
			return err
		}
		return repo.ReplaceCategories(ctx, page.ID, page.Categories)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "page created", "page_id", page.ID, "slug", page.Slug)
	return page, nil
}

// Update replaces the editable fields of a page and its category links.
func (s *PageService) Update(ctx context.Context, id string, in PageInput) (*models.Page, error) {
	page, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	slugValue, err := s.pickSlug(ctx, s.repomanager.Pages(s.db), in, page.Slug)
	if err != nil {
		return nil, err
	}
	page.Slug = slugValue
	in.apply(page)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Pages(tx)
		if err := repo.Update(ctx, page); err != nil {
			return notFound(err, common.ErrPageNotExist)
		}
		return repo.ReplaceCategories(ctx, page.ID, page.Categories)
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Delete removes a page and returns the removed record.
func (s *PageService) Delete(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Pages(s.db).Delete(ctx, id); err != nil {
		return nil, notFound(err, common.ErrPageNotExist)
	}
	s.log.Info(ctx, "page deleted", "page_id", id)
	return page, nil
}

// Get returns a page. With publishedOnly an unpublished page is reported
// as missing.
func (s *PageService) Get(ctx context.Context, id string, publishedOnly bool) (*models.Page, error) {
	page, err := s.repomanager.Pages(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, common.ErrPageNotExist)
	}
	if publishedOnly && !page.Published() {
		return nil, common.ErrPageNotExist
	}
	return page, nil
}

func (s *PageService) List(ctx context.Context, opts models.ListOptions, publishedOnly bool) (*models.Paginated[*models.Page], error) {
	opts = opts.Normalize()
	repo := s.repomanager.Pages(s.db)

	rows, count, err := repo.List(ctx, opts, publishedOnly)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(opts, rows, count, total), nil
}

// TogglePublished publishes an unpublished page now, or unpublishes a
// published one.
func (s *PageService) TogglePublished(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	var at *time.Time
	if !page.Published() {
		now := s.now().UTC()
		at = &now
	}
	if err := s.repomanager.Pages(s.db).SetPublishedAt(ctx, id, at); err != nil {
		return nil, notFound(err, common.ErrPageNotExist)
	}
	page.PublishedAt = at
	return page, nil
}
