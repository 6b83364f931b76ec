package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const categoryColumns = `id, name, slug, category_id, created_at, updated_at`

// listWhere is shared by the count and the page query so both see the
// same filter.
const listWhere = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR category_id::text = $2)`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	c := &models.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func wrap(err error) error {
	switch {
	case dbx.IsUniqueViolation(err):
		return common.ErrSlugAlreadyExists
	case dbx.IsForeignKeyViolation(err):
		return common.ErrParentCategoryNotExist
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (id, name, slug, category_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	category.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query, category.ID, category.Name, category.Slug, category.CategoryID).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return category, nil
}

func (r *PostgresRepository) Update(ctx context.Context, category *models.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, slug = $3, category_id = $4, updated_at = now()
		 WHERE id = $1`,
		category.ID, category.Name, category.Slug, category.CategoryID)
	if err != nil {
		return wrap(err)
	}
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, wrap(err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts models.ListOptions, filter Filter) ([]*models.Category, int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM categories `+listWhere,
		filter.Search, filter.ParentID).Scan(&count)
	if err != nil {
		return nil, 0, wrap(err)
	}

	query := `SELECT ` + categoryColumns + ` FROM categories ` + listWhere + `
		ORDER BY name
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, filter.Search, filter.ParentID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, 0, wrap(err)
	}
	defer rows.Close()

	result := []*models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, wrap(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap(err)
	}

	return result, count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM categories`).Scan(&n); err != nil {
		return 0, wrap(err)
	}
	return n, nil
}
