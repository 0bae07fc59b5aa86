package series

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Daily maps calendar dates to at most one value each. Dates are midnight in
// the series location and strictly increasing; NaN marks a missing value.
type Daily struct {
	dates  []time.Time
	values []float64
	loc    *time.Location
}

// NewDaily builds a daily series from parallel slices. Dates must be
// strictly increasing calendar days.
func NewDaily(loc *time.Location, dates []time.Time, values []float64) (*Daily, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("length mismatch: %d dates, %d values", len(dates), len(values))
	}
	if loc == nil {
		loc = time.UTC
	}

	d := &Daily{loc: loc}
	for i, t := range dates {
		day := truncateDay(t, loc)
		if n := len(d.dates); n > 0 && !day.After(d.dates[n-1]) {
			return nil, fmt.Errorf("dates not strictly increasing at %s", day.Format("2006-01-02"))
		}
		d.dates = append(d.dates, day)
		d.values = append(d.values, values[i])
	}
	return d, nil
}

// Len returns the number of dates.
func (d *Daily) Len() int { return len(d.dates) }

// Dates returns the dates. The slice must not be modified.
func (d *Daily) Dates() []time.Time { return d.dates }

// Values returns the values, parallel to Dates. The slice must not be modified.
func (d *Daily) Values() []float64 { return d.values }

// Location returns the timezone of the dates.
func (d *Daily) Location() *time.Location { return d.loc }

// Value looks up the value for the calendar day containing t.
func (d *Daily) Value(t time.Time) (float64, bool) {
	day := truncateDay(t, d.loc)
	for i, dt := range d.dates {
		if dt.Equal(day) {
			return d.values[i], !math.IsNaN(d.values[i])
		}
		if dt.After(day) {
			break
		}
	}
	return math.NaN(), false
}

// Years returns the distinct years present, ascending.
func (d *Daily) Years() []int {
	var years []int
	for _, t := range d.dates {
		if y := t.Year(); len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// Count returns the number of non-missing values.
func (d *Daily) Count() int {
	n := 0
	for _, v := range d.values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Min returns the smallest non-missing value, or NaN if there is none.
func (d *Daily) Min() float64 {
	return d.reduce(math.Min)
}

// Max returns the largest non-missing value, or NaN if there is none.
func (d *Daily) Max() float64 {
	return d.reduce(math.Max)
}

func (d *Daily) reduce(fn func(a, b float64) float64) float64 {
	out := math.NaN()
	for _, v := range d.values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) {
			out = v
			continue
		}
		out = fn(out, v)
	}
	return out
}

// ZeroFraction is the share of non-missing values equal to zero.
func (d *Daily) ZeroFraction() float64 {
	count, zeros := 0, 0
	for _, v := range d.values {
		if math.IsNaN(v) {
			continue
		}
		count++
		if v == 0 {
			zeros++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(zeros) / float64(count)
}

// DropZeros removes days whose value is exactly zero, together with days
// that are missing.
func (d *Daily) DropZeros() *Daily {
	out := &Daily{loc: d.loc}
	for i, v := range d.values {
		if v == 0 || math.IsNaN(v) {
			continue
		}
		out.dates = append(out.dates, d.dates[i])
		out.values = append(out.values, v)
	}
	return out
}

// InYear keeps only the dates of one calendar year. The result may be empty.
func (d *Daily) InYear(year int) *Daily {
	out := &Daily{loc: d.loc}
	for i, t := range d.dates {
		if t.Year() == year {
			out.dates = append(out.dates, t)
			out.values = append(out.values, d.values[i])
		}
	}
	return out
}

// Reindex returns a series with one entry for every calendar day of year,
// missing where d has no date. The location is preserved.
func (d *Daily) Reindex(year int) *Daily {
	n := DaysIn(year)
	out := &Daily{
		loc:    d.loc,
		dates:  make([]time.Time, n),
		values: make([]float64, n),
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, d.loc)
	for i := 0; i < n; i++ {
		out.dates[i] = start.AddDate(0, 0, i)
		out.values[i] = math.NaN()
	}
	for i, t := range d.dates {
		if t.Year() == year {
			out.values[t.YearDay()-1] = d.values[i]
		}
	}
	return out
}

// DropZero is the policy for treating zero values as missing data.
type DropZero int

const (
	// DropZeroAuto drops zeros when more than half of the daily values are zero.
	DropZeroAuto DropZero = iota
	DropZeroOn
	DropZeroOff
)

// ParseDropZero accepts "auto", "true"/"on" and "false"/"off".
func ParseDropZero(s string) (DropZero, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DropZeroAuto, nil
	case "true", "on", "yes":
		return DropZeroOn, nil
	case "false", "off", "no":
		return DropZeroOff, nil
	}
	return DropZeroAuto, fmt.Errorf("invalid dropzero value %q", s)
}

func (p DropZero) String() string {
	switch p {
	case DropZeroOn:
		return "on"
	case DropZeroOff:
		return "off"
	default:
		return "auto"
	}
}

// Active reports whether zeros are dropped from d under this policy.
func (p DropZero) Active(d *Daily) bool {
	switch p {
	case DropZeroOn:
		return true
	case DropZeroOff:
		return false
	default:
		return d.ZeroFraction() > 0.5
	}
}

// Apply returns d with zeros dropped when the policy is active.
func (p DropZero) Apply(d *Daily) (*Daily, bool) {
	if !p.Active(d) {
		return d, false
	}
	return d.DropZeros(), true
}
