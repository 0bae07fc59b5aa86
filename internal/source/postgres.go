package source

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/christophergentle/calplot/internal/series"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Postgres reads series from SQL queries returning a "day" timestamp column
// and a nullable "value" column.
type Postgres struct {
	db *sqlx.DB
}

// OpenPostgres connects to PostgreSQL and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgres(db), nil
}

// NewPostgres wraps an open connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

type dayValue struct {
	Day   time.Time       `db:"day"`
	Value sql.NullFloat64 `db:"value"`
}

// Series runs query and returns its rows as a series. NULL values are
// missing.
func (p *Postgres) Series(ctx context.Context, query string, args ...any) (*series.Series, error) {
	var rows []dayValue
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	points := make([]series.Point, len(rows))
	for i, r := range rows {
		v := math.NaN()
		if r.Value.Valid {
			v = r.Value.Float64
		}
		points[i] = series.Point{Time: r.Day, Value: v}
	}
	return series.New(points), nil
}
