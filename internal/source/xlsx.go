package source

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/christophergentle/calplot/internal/series"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one sheet of a workbook. An empty sheet name reads the
// first sheet. Dates may be text or spreadsheet serial numbers.
func ReadXLSX(r io.Reader, sheet string, cols Columns) (*series.Series, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoRows
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	parse := func(s string) (time.Time, error) {
		if serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date serial %q: %w", s, err)
			}
			// Serial dates carry no zone; read the wall clock in the target location.
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, cols.location()), nil
		}
		return cols.parseDate(s)
	}
	return fromRecords(rows, cols, parse)
}

// ReadXLSXFile reads one sheet of a workbook file.
func ReadXLSXFile(path, sheet string, cols Columns) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadXLSX(f, sheet, cols)
}
