// Package calendar maps the days of a calendar year onto a day-of-week by
// week-of-year grid and computes the month outline polygons drawn over it.
//
// Grid coordinates are y-up: column x spans [x, x+1] and row r spans
// [r, r+1]. Row r holds day-of-week 6-r, so Monday (day 0) is the top row
// and Sunday (day 6) is row 0.
package calendar

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Rows is the number of day-of-week rows in a grid.
const Rows = 7

// Week remapping thresholds for ISO weeks that spill over the year boundary.
const (
	januarySpillWeek  = 50
	decemberSpillWeek = 10
)

// Cell addresses one grid position.
type Cell struct {
	Row int
	Col int
}

// Grid is one year of daily values pivoted into 7 rows and Weeks columns.
type Grid struct {
	Year  int
	Weeks int

	// Values holds the data, NaN where there is none.
	Values [Rows][]float64
	// Fill marks cells that are real days of Year, with or without data.
	Fill [Rows][]bool

	cols []int // column per day of year, index YearDay-1
}

// Weekday returns the day-of-week index of t, 0 for Monday through 6 for Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// RowOf returns the grid row holding day-of-week dow.
func RowOf(dow int) int {
	return Rows - 1 - dow
}

// EffectiveWeeks returns the remapped ISO week of every day of year, indexed
// by YearDay-1. January days in a week numbered above 50 belong to the
// previous ISO year and become week 0; December days in a week numbered
// below 10 belong to the next ISO year and become one past the largest week.
func EffectiveWeeks(year int) []int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := start.AddDate(1, 0, 0).Sub(start).Hours() / 24

	weeks := make([]int, int(n))
	months := make([]time.Month, len(weeks))
	for i := range weeks {
		t := start.AddDate(0, 0, i)
		_, weeks[i] = t.ISOWeek()
		months[i] = t.Month()
	}

	for i, w := range weeks {
		if months[i] == time.January && w > januarySpillWeek {
			weeks[i] = 0
		}
	}

	maxWeek := 0
	for _, w := range weeks {
		if w > maxWeek {
			maxWeek = w
		}
	}
	for i, w := range weeks {
		if months[i] == time.December && w < decemberSpillWeek {
			weeks[i] = maxWeek + 1
		}
	}

	return weeks
}

// Layout pivots values into a grid. values[i] is the value of day i+1 of
// year and NaN marks a missing day; a nil or empty slice lays out a fully
// missing year.
func Layout(year int, values []float64) (*Grid, error) {
	weeks := EffectiveWeeks(year)
	if len(values) != 0 && len(values) != len(weeks) {
		return nil, fmt.Errorf("year %d has %d days, got %d values", year, len(weeks), len(values))
	}

	seen := make(map[int]bool, 54)
	distinct := make([]int, 0, 54)
	for _, w := range weeks {
		if !seen[w] {
			seen[w] = true
			distinct = append(distinct, w)
		}
	}
	sort.Ints(distinct)
	colOf := make(map[int]int, len(distinct))
	for i, w := range distinct {
		colOf[w] = i
	}

	g := &Grid{
		Year:  year,
		Weeks: len(distinct),
		cols:  make([]int, len(weeks)),
	}
	for r := 0; r < Rows; r++ {
		g.Values[r] = make([]float64, g.Weeks)
		g.Fill[r] = make([]bool, g.Weeks)
		for c := range g.Values[r] {
			g.Values[r][c] = math.NaN()
		}
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, w := range weeks {
		col := colOf[w]
		row := RowOf(Weekday(start.AddDate(0, 0, i)))
		g.cols[i] = col
		g.Fill[row][col] = true
		if len(values) > 0 {
			g.Values[row][col] = values[i]
		}
	}

	return g, nil
}

// Cell returns the grid position of the calendar day containing t. The
// second result is false when t falls outside the grid's year.
func (g *Grid) Cell(t time.Time) (Cell, bool) {
	if t.Year() != g.Year {
		return Cell{}, false
	}
	return Cell{Row: RowOf(Weekday(t)), Col: g.cols[t.YearDay()-1]}, true
}

// At returns the value of a cell and whether it holds data.
func (g *Grid) At(row, col int) (float64, bool) {
	v := g.Values[row][col]
	return v, !math.IsNaN(v)
}

// Filled reports whether a cell is a real day of the grid's year.
func (g *Grid) Filled(row, col int) bool {
	return g.Fill[row][col]
}

// Count returns the number of cells holding data.
func (g *Grid) Count() int {
	n := 0
	for r := 0; r < Rows; r++ {
		for _, v := range g.Values[r] {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
