package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanSetting(row interface{ Scan(...any) error }) (*models.Setting, error) {
	s := &models.Setting{}
	if err := row.Scan(&s.ID, &s.Name, &s.Value, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, value, created_at, updated_at FROM settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Setting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, column, value string) (*models.Setting, error) {
	query := `SELECT id, name, value, created_at, updated_at FROM settings WHERE ` + column + ` = $1`

	s, err := scanSetting(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Setting, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Setting, error) {
	return r.getOne(ctx, "name", name)
}

func (r *PostgresRepository) UpdateValue(ctx context.Context, name string, value *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE settings SET value = $2, updated_at = now() WHERE name = $1`, name, value)
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
