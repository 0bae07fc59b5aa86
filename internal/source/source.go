// Package source reads daily time series from files, PostgreSQL and
// DynamoDB.
package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/christophergentle/calplot/internal/series"
)

// ErrNoRows is returned when a source holds no observations.
var ErrNoRows = errors.New("no rows in source")

// Columns names the date and value columns of tabular input.
type Columns struct {
	Date  string
	Value string
	// Layout is a time layout for the date column. Empty tries the common
	// ISO forms.
	Layout   string
	Location *time.Location
}

// DefaultColumns reads "date" and "value" in UTC.
func DefaultColumns() Columns {
	return Columns{Date: "date", Value: "value", Location: time.UTC}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01-02-06",
}

func (c Columns) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Columns) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if c.Layout != "" {
		return time.ParseInLocation(c.Layout, s, c.location())
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, c.location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// fromRecords builds a series from a header row followed by data rows.
// Blank rows are skipped; blank values are missing.
func fromRecords(records [][]string, cols Columns, parseDate func(string) (time.Time, error)) (*series.Series, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	header := records[0]
	di := columnIndex(header, cols.Date)
	vi := columnIndex(header, cols.Value)
	if di < 0 {
		return nil, fmt.Errorf("date column %q not found in header %v", cols.Date, header)
	}
	if vi < 0 {
		return nil, fmt.Errorf("value column %q not found in header %v", cols.Value, header)
	}

	points := make([]series.Point, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		if di >= len(rec) || strings.TrimSpace(rec[di]) == "" {
			continue
		}

		t, err := parseDate(rec[di])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		v := math.NaN()
		if vi < len(rec) {
			if v, err = parseValue(rec[vi]); err != nil {
				return nil, fmt.Errorf("row %d: invalid value %q: %w", line, rec[vi], err)
			}
		}
		points = append(points, series.Point{Time: t, Value: v})
	}

	if len(points) == 0 {
		return nil, ErrNoRows
	}
	return series.New(points), nil
}
