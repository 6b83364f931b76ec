package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// pageSelect returns every page column plus a comma separated list of the
// page's category ids.
const pageSelect = `SELECT p.id, p.name, p.content, p.is_page, p.published_at, p.template, p.slug,
		p.user_id, p.thumbnail, p.meta_title, p.meta_description, p.created_at, p.updated_at,
		COALESCE(string_agg(pc.category_id::text, ','), '')
	FROM pages p
	LEFT JOIN page_categories pc ON pc.page_id = p.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*models.Page, error) {
	p := &models.Page{}
	var categories string
	err := row.Scan(&p.ID, &p.Name, &p.Content, &p.IsPage, &p.PublishedAt, &p.Template, &p.Slug,
		&p.UserID, &p.Thumbnail, &p.MetaTitle, &p.MetaDescription, &p.CreatedAt, &p.UpdatedAt,
		&categories)
	if err != nil {
		return nil, err
	}
	p.Categories = []string{}
	if categories != "" {
		p.Categories = strings.Split(categories, ",")
	}
	return p, nil
}

func wrap(err error) error {
	if dbx.IsUniqueViolation(err) {
		return common.ErrSlugAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, page *models.Page) (*models.Page, error) {
	query :=
		`INSERT INTO pages (id, name, content, is_page, published_at, template, slug,
			user_id, thumbnail, meta_title, meta_description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`

	page.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		page.ID, page.Name, page.Content, page.IsPage, page.PublishedAt, page.Template, page.Slug,
		page.UserID, page.Thumbnail, page.MetaTitle, page.MetaDescription,
	).Scan(&page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}

	return page, nil
}

func (r *PostgresRepository) Update(ctx context.Context, page *models.Page) error {
	query :=
		`UPDATE pages SET name = $2, content = $3, is_page = $4, published_at = $5, template = $6,
			slug = $7, thumbnail = $8, meta_title = $9, meta_description = $10, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		page.ID, page.Name, page.Content, page.IsPage, page.PublishedAt, page.Template,
		page.Slug, page.Thumbnail, page.MetaTitle, page.MetaDescription)
	if err != nil {
		return wrap(err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return wrap(err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	query := pageSelect + ` WHERE p.id = $1 GROUP BY p.id`

	page, err := scanPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, wrap(err)
	}
	return page, nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts models.ListOptions, publishedOnly bool) ([]*models.Page, int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM pages p WHERE ($1 = false OR p.published_at IS NOT NULL)`,
		publishedOnly).Scan(&count)
	if err != nil {
		return nil, 0, wrap(err)
	}

	query := pageSelect + `
		WHERE ($1 = false OR p.published_at IS NOT NULL)
		GROUP BY p.id
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, publishedOnly, opts.Limit, opts.Offset())
	if err != nil {
		return nil, 0, wrap(err)
	}
	defer rows.Close()

	result := []*models.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, wrap(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap(err)
	}

	return result, count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM pages`).Scan(&n); err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// SetPublishedAt publishes the page at the given time, or unpublishes it
// when at is nil.
func (r *PostgresRepository) SetPublishedAt(ctx context.Context, id string, at *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pages SET published_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return wrap(err)
	}
	return affectedOne(res)
}

// ReplaceCategories drops the page's category links and inserts the given
// ones. Callers run it inside a transaction.
func (r *PostgresRepository) ReplaceCategories(ctx context.Context, pageID string, categoryIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM page_categories WHERE page_id = $1`, pageID); err != nil {
		return wrap(err)
	}
	for _, id := range categoryIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO page_categories (page_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pageID, id)
		if err != nil {
			if dbx.IsForeignKeyViolation(err) {
				return common.ErrCategoryNotExist
			}
			return wrap(err)
		}
	}
	return nil
}
