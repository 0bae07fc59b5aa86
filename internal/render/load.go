package render

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/series"
	"github.com/christophergentle/calplot/internal/source"
)

// Source names used in logs and metrics
const (
	SourceCSV      = "csv"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
	SourceDynamoDB = "dynamodb"
)

// Columns converts the input settings into source column options
func Columns(in config.InputConfig) (source.Columns, error) {
	cols := source.DefaultColumns()
	if in.DateColumn != "" {
		cols.Date = in.DateColumn
	}
	if in.ValueColumn != "" {
		cols.Value = in.ValueColumn
	}
	cols.Layout = in.DateLayout
	if in.Timezone != "" {
		loc, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return cols, &config.ConfigError{Message: "invalid input.timezone", Details: []string{err.Error()}}
		}
		cols.Location = loc
	}
	return cols, nil
}

// SourceKind picks the reader for the input settings
func SourceKind(in config.InputConfig) (string, error) {
	if in.DSN != "" {
		return SourcePostgres, nil
	}
	switch strings.ToLower(filepath.Ext(in.Path)) {
	case ".csv", ".txt":
		return SourceCSV, nil
	case ".xlsx", ".xlsm":
		return SourceXLSX, nil
	case "":
		return "", &config.ConfigError{Message: "no input configured", Details: []string{"set input.path or input.dsn"}}
	default:
		return "", &config.ConfigError{Message: "unsupported input file", Details: []string{in.Path}}
	}
}

// Load reads the configured time series
func Load(ctx context.Context, in config.InputConfig) (*series.Series, string, error) {
	kind, err := SourceKind(in)
	if err != nil {
		return nil, "", err
	}
	cols, err := Columns(in)
	if err != nil {
		return nil, kind, err
	}

	var data *series.Series
	switch kind {
	case SourcePostgres:
		pg, err := source.OpenPostgres(ctx, in.DSN)
		if err != nil {
			return nil, kind, err
		}
		defer pg.Close()
		data, err = pg.Series(ctx, in.Query)
		if err != nil {
			return nil, kind, err
		}
	case SourceXLSX:
		data, err = source.ReadXLSXFile(in.Path, in.Sheet, cols)
	default:
		data, err = source.ReadCSVFile(in.Path, cols)
	}
	if err != nil {
		return nil, kind, fmt.Errorf("failed to load %s: %w", in.Path, err)
	}
	return data, kind, nil
}

// ReadCSV reads a CSV body with the configured columns
func ReadCSV(r io.Reader, in config.InputConfig) (*series.Series, error) {
	cols, err := Columns(in)
	if err != nil {
		return nil, err
	}
	return source.ReadCSV(r, cols)
}
