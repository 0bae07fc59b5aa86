package source

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresSeries(t *testing.T) {
	pg, mock := newMockPostgres(t)

	day1 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"day", "value"}).
		AddRow(day2, nil).
		AddRow(day1, 4.5)
	mock.ExpectQuery(`SELECT day, value FROM commits WHERE repo = \$1`).
		WithArgs("calplot").
		WillReturnRows(rows)

	s, err := pg.Series(context.Background(), "SELECT day, value FROM commits WHERE repo = $1", "calplot")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, day1, s.Points()[0].Time)
	assert.Equal(t, 4.5, s.Points()[0].Value)
	assert.True(t, math.IsNaN(s.Points()[1].Value))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeriesNoRows(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"day", "value"}))

	_, err := pg.Series(context.Background(), "SELECT day, value FROM commits")
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestPostgresSeriesQueryError(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err := pg.Series(context.Background(), "SELECT day, value FROM missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}
