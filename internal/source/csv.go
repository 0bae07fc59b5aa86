package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/christophergentle/calplot/internal/series"
)

// ReadCSV reads a CSV stream with a header row.
func ReadCSV(r io.Reader, cols Columns) (*series.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRecords(records, cols, cols.parseDate)
}

// ReadCSVFile reads a CSV file with a header row.
func ReadCSVFile(path string, cols Columns) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f, cols)
}
