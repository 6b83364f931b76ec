package settings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var cols = []string{"id", "name", "value", "created_at", "updated_at"}

func TestList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+settings\s+ORDER\s+BY\s+name`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s-1", "language", "en", now, now).
			AddRow("s-2", "logo", nil, now, now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Value)
	assert.Equal(t, "en", *got[0].Value)
	assert.Nil(t, got[1].Value)
}

func TestGetByName(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	q := `FROM\s+settings\s+WHERE\s+name\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("language").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s-1", "language", "pl", now, now))
	mock.ExpectQuery(q).WithArgs("unknown").WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByName(context.Background(), "language")
	require.NoError(t, err)
	assert.Equal(t, "pl", *s.Value)

	_, err = repo.GetByName(context.Background(), "unknown")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+settings\s+WHERE\s+id\s*=\s*\$1$`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s-1", "name", "cms", now, now))

	s, err := repo.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "name", s.Name)
}

func TestUpdateValue(t *testing.T) {
	repo, mock := newMockRepo(t)

	q := `UPDATE\s+settings\s+SET\s+value\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+name\s*=\s*\$1`
	mock.ExpectExec(q).WithArgs("name", "my site").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("logo", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("bogus", "x").WillReturnResult(sqlmock.NewResult(0, 0))

	v := "my site"
	require.NoError(t, repo.UpdateValue(context.Background(), "name", &v))
	require.NoError(t, repo.UpdateValue(context.Background(), "logo", nil))

	x := "x"
	assert.ErrorIs(t, repo.UpdateValue(context.Background(), "bogus", &x), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
