package files

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

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, name, title, mime, path, created_at, updated_at`

func scanFile(row interface{ Scan(...any) error }) (*models.File, error) {
	f := &models.File{}
	if err := row.Scan(&f.ID, &f.Name, &f.Title, &f.Mime, &f.Path, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a new file record and assigns its id.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (id, name, title, mime, path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	file.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query, file.ID, file.Name, file.Title, file.Mime, file.Path).
		Scan(&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
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

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id, title string) error {
	return r.exec(ctx, `UPDATE files SET title = $2, updated_at = now() WHERE id = $1`, id, title)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM files WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, column, value string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE ` + column + ` = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresRepository) GetByPath(ctx context.Context, path string) (*models.File, error) {
	return r.getOne(ctx, "path", path)
}

func (r *PostgresRepository) List(ctx context.Context, opts models.ListOptions) ([]*models.File, int, error) {
	const where = `WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')`

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files `+where, opts.Search).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + fileColumns + ` FROM files ` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, opts.Search, opts.Limit, opts.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
