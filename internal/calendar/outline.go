package calendar

import "time"

// Point is a vertex in grid coordinates.
type Point struct {
	X, Y float64
}

// Polygon is the outline of one month: 8 vertices tracing the partial first
// week, the full weeks in between and the partial last week.
type Polygon [8]Point

// Column returns the week column of t counted from the week containing
// January 1st. It matches the column Layout assigns to t.
func Column(t time.Time) int {
	start := Weekday(time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	return (t.YearDay() + start - 1) / 7
}

func monthBounds(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// MonthOutline returns the outline polygon of one month.
func MonthOutline(year int, month time.Month) Polygon {
	first, last := monthBounds(year, month)

	y0 := float64(Rows - Weekday(first))
	y1 := float64(Rows - Weekday(last))
	x0 := float64(Column(first))
	x1 := float64(Column(last))

	return Polygon{
		{x0, y0},
		{x0 + 1, y0},
		{x0 + 1, Rows},
		{x1 + 1, Rows},
		{x1 + 1, y1 - 1},
		{x1, y1 - 1},
		{x1, 0},
		{x0, 0},
	}
}

// MonthOutlines returns the 12 month outlines of year, January first.
func MonthOutlines(year int) []Polygon {
	out := make([]Polygon, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, MonthOutline(year, m))
	}
	return out
}

// MonthCenter returns the x coordinate midway across the columns a month spans.
func MonthCenter(year int, month time.Month) float64 {
	first, last := monthBounds(year, month)
	x0 := float64(Column(first))
	x1 := float64(Column(last))
	return x0 + (x1-x0+1)/2
}

// MonthDayCenter returns the x coordinate of the middle of the column that
// holds the given day of month. Days outside the month are clamped to it.
func MonthDayCenter(year int, month time.Month, day int) float64 {
	first, last := monthBounds(year, month)
	day = max(1, min(day, last.Day()))
	return float64(Column(first.AddDate(0, 0, day-1))) + 0.5
}

// DayCenter returns the y coordinate of the middle of day-of-week dow's row.
func DayCenter(dow int) float64 {
	return float64(RowOf(dow)) + 0.5
}
