// Package series holds the daily time-series model the calendar heatmaps are
// drawn from: raw observations, resampling to one value per day, and the
// filtering steps applied before layout.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Point is a single observation. A NaN value marks a missing observation.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered set of observations, not necessarily one per day.
type Series struct {
	points []Point
	loc    *time.Location
}

// New builds a series from points in any order. The location of the
// earliest point is kept as the series timezone; all points are converted
// to it.
func New(points []Point) *Series {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	loc := time.UTC
	if len(sorted) > 0 {
		loc = sorted[0].Time.Location()
	}
	for i := range sorted {
		sorted[i].Time = sorted[i].Time.In(loc)
	}

	return &Series{points: sorted, loc: loc}
}

// FromValues pairs timestamps with values.
func FromValues(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("length mismatch: %d timestamps, %d values", len(times), len(values))
	}

	points := make([]Point, len(times))
	for i := range times {
		points[i] = Point{Time: times[i], Value: values[i]}
	}
	return New(points), nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.points) }

// Points returns the observations sorted by time. The slice must not be modified.
func (s *Series) Points() []Point { return s.points }

// Location returns the series timezone.
func (s *Series) Location() *time.Location { return s.loc }

// Years returns the distinct calendar years present, ascending.
func (s *Series) Years() []int {
	var years []int
	for _, p := range s.points {
		if y := p.Time.Year(); len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// NUnique counts distinct non-missing values.
func (s *Series) NUnique() int {
	seen := make(map[float64]struct{})
	for _, p := range s.points {
		if math.IsNaN(p.Value) {
			continue
		}
		seen[p.Value] = struct{}{}
	}
	return len(seen)
}

// Resample aggregates observations by calendar day. The result covers every
// day from the first to the last observation; days without observations get
// the method's empty value (0 for sum and count, missing otherwise).
// AggNone is the same as AsDaily.
func (s *Series) Resample(agg Agg) (*Daily, error) {
	if _, err := ParseAgg(string(agg)); err != nil {
		return nil, err
	}
	if agg == AggNone {
		return s.AsDaily(), nil
	}
	if len(s.points) == 0 {
		return &Daily{loc: s.loc}, nil
	}

	first := truncateDay(s.points[0].Time, s.loc)
	last := truncateDay(s.points[len(s.points)-1].Time, s.loc)

	d := &Daily{loc: s.loc}
	i := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		var bucket []float64
		for ; i < len(s.points) && truncateDay(s.points[i].Time, s.loc).Equal(day); i++ {
			if v := s.points[i].Value; !math.IsNaN(v) {
				bucket = append(bucket, v)
			}
		}
		d.dates = append(d.dates, day)
		d.values = append(d.values, agg.apply(bucket))
	}

	return d, nil
}

// AsDaily treats the series as already sampled by day. When a date occurs
// more than once the last observation wins.
func (s *Series) AsDaily() *Daily {
	d := &Daily{loc: s.loc}
	for _, p := range s.points {
		day := truncateDay(p.Time, s.loc)
		if n := len(d.dates); n > 0 && d.dates[n-1].Equal(day) {
			d.values[n-1] = p.Value
			continue
		}
		d.dates = append(d.dates, day)
		d.values = append(d.values, p.Value)
	}
	return d
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysIn returns the number of days in a calendar year.
func DaysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
