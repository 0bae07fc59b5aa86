package heatmap

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/christophergentle/calplot/internal/calendar"
	"github.com/christophergentle/calplot/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seriesOf(t *testing.T, values map[time.Time]float64) *series.Series {
	t.Helper()
	var points []series.Point
	for tm, v := range values {
		points = append(points, series.Point{Time: tm, Value: v})
	}
	return series.New(points)
}

func countArtists[T artist](ax *Axes) int {
	n := 0
	for _, a := range ax.artists {
		if _, ok := a.(T); ok {
			n++
		}
	}
	return n
}

func dataMesh(t *testing.T, ax *Axes) *mesh {
	t.Helper()
	for _, a := range ax.artists {
		if m, ok := a.(*mesh); ok && m.z == zData {
			return m
		}
	}
	t.Fatal("no data mesh drawn")
	return nil
}

func TestYearPlotSingleValue(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})

	ax, err := YearPlot(nil, data, DefaultYearOptions())
	require.NoError(t, err)

	g := ax.Grid()
	require.NotNil(t, g)
	assert.Equal(t, 2019, g.Year)
	assert.Equal(t, 53, g.Weeks)

	// Tuesday of the first ISO week.
	v, ok := g.At(calendar.RowOf(1), 0)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 1, g.Count())

	filled := 0
	for r := 0; r < calendar.Rows; r++ {
		for c := 0; c < g.Weeks; c++ {
			if g.Filled(r, c) {
				filled++
			}
		}
	}
	assert.Equal(t, 365, filled)

	assert.Len(t, ax.Outlines(), 12)
	assert.Equal(t, 12, countArtists[*outline](ax))

	lo, hi := ax.XLim()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 53.0, hi)
	lo, hi = ax.YLim()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestYearPlotEmptyYear(t *testing.T) {
	opts := DefaultYearOptions()
	opts.Year = 2020

	ax, err := YearPlot(nil, series.New(nil), opts)
	require.NoError(t, err)

	g := ax.Grid()
	assert.Equal(t, 53, g.Weeks)
	assert.Equal(t, 0, g.Count())
	assert.Len(t, ax.Outlines(), 12)
	assert.Len(t, ax.XTicks(), 12)
	assert.Len(t, ax.YTicks(), 7)

	img, err := ax.Figure().PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))
}

func TestYearPlotWithoutYearNeedsData(t *testing.T) {
	_, err := YearPlot(nil, series.New(nil), DefaultYearOptions())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYearPlotDefaultsToEarliestYear(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{
		day(2021, time.March, 3): 1,
		day(2019, time.June, 1):  2,
	})

	ax, err := YearPlot(nil, data, DefaultYearOptions())
	require.NoError(t, err)
	assert.Equal(t, 2019, ax.Grid().Year)
}

func TestYearPlotMissingYearIsEmpty(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.June, 1): 2})
	opts := DefaultYearOptions()
	opts.Year = 2030

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, ax.Grid().Count())
}

func TestYearPlotSumsByDay(t *testing.T) {
	data := series.New([]series.Point{
		{Time: time.Date(2019, 3, 1, 8, 0, 0, 0, time.UTC), Value: 2},
		{Time: time.Date(2019, 3, 1, 17, 0, 0, 0, time.UTC), Value: 3},
		{Time: time.Date(2019, 3, 4, 9, 0, 0, 0, time.UTC), Value: 1},
	})

	ax, err := YearPlot(nil, data, DefaultYearOptions())
	require.NoError(t, err)

	g := ax.Grid()
	cell, ok := g.Cell(day(2019, time.March, 1))
	require.True(t, ok)
	v, _ := g.At(cell.Row, cell.Col)
	assert.Equal(t, 5.0, v)

	// Gap days sum to zero; that is 2 of 4 days so zeros stay.
	cell, _ = g.Cell(day(2019, time.March, 2))
	v, ok = g.At(cell.Row, cell.Col)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	assert.Equal(t, Norm{Vmin: 0, Vmax: 5}, ax.Mappable().Norm)
}

func TestYearPlotDropsZeros(t *testing.T) {
	values := map[time.Time]float64{}
	for d := 1; d <= 10; d++ {
		values[day(2019, time.January, d)] = 0
	}
	values[day(2019, time.January, 4)] = 3
	values[day(2019, time.January, 7)] = 8

	tests := []struct {
		name     string
		policy   series.DropZero
		wantData int
	}{
		{"auto drops when mostly zero", series.DropZeroAuto, 2},
		{"forced on", series.DropZeroOn, 2},
		{"forced off", series.DropZeroOff, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultYearOptions()
			opts.DropZero = tt.policy

			ax, err := YearPlot(nil, seriesOf(t, values), opts)
			require.NoError(t, err)

			g := ax.Grid()
			assert.Equal(t, tt.wantData, g.Count())

			cell, _ := g.Cell(day(2019, time.January, 2))
			assert.True(t, g.Filled(cell.Row, cell.Col))

			if tt.policy != series.DropZeroOff {
				for r := 0; r < calendar.Rows; r++ {
					for c := 0; c < g.Weeks; c++ {
						if v, ok := g.At(r, c); ok {
							assert.NotEqual(t, 0.0, v)
						}
					}
				}
				assert.Equal(t, Norm{Vmin: 3, Vmax: 8}, ax.Mappable().Norm)
			}
		})
	}
}

func TestYearPlotExplicitBounds(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{
		day(2019, time.January, 1): 5,
		day(2019, time.January, 2): 7,
	})
	lo, hi := -10.0, 10.0
	opts := DefaultYearOptions()
	opts.Vmin = &lo
	opts.Vmax = &hi

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)
	assert.Equal(t, Norm{Vmin: -10, Vmax: 10}, ax.Mappable().Norm)
}

func TestYearPlotExtremeValues(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{
		day(2024, time.January, 1): -1.7e308,
		day(2024, time.January, 2): 1.7e308,
	})

	ax, err := YearPlot(nil, data, DefaultYearOptions())
	require.NoError(t, err)
	assert.Equal(t, Norm{Vmin: -1.7e308, Vmax: 1.7e308}, ax.Mappable().Norm)

	fig, _, err := CalPlot(data, DefaultCalOptions())
	require.NoError(t, err)
	assert.True(t, fig.HasColorbar())
	img, err := fig.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))
}

func TestYearPlotTicks(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 1})

	opts := DefaultYearOptions()
	opts.MonthTicks = calendar.TickEvery(3)
	opts.DayLabels = []string{"M", "T", "W", "T", "F", "S", "S"}
	opts.DayTicks = calendar.TickList(0, 2, 4, 6)

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)

	var months []string
	for _, tk := range ax.XTicks() {
		months = append(months, tk.Label)
	}
	assert.Equal(t, []string{"Feb", "May", "Aug", "Nov"}, months)
	assert.Equal(t, calendar.MonthCenter(2019, time.February), ax.XTicks()[0].Pos)

	require.Len(t, ax.YTicks(), 4)
	assert.Equal(t, Tick{Pos: 6.5, Label: "M"}, ax.YTicks()[0])
	assert.Equal(t, Tick{Pos: 0.5, Label: "S"}, ax.YTicks()[3])
}

func TestYearPlotMonthLabelOffset(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 1})

	opts := DefaultYearOptions()
	opts.MonthTicks = calendar.TickEvery(3)
	opts.MonthLabelOffset = 1
	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)
	assert.Equal(t, Tick{Pos: 4.5, Label: "Feb"}, ax.XTicks()[0])

	opts.MonthLabelOffset = -1
	_, err = YearPlot(nil, data, opts)
	assert.Error(t, err)
}

func TestYearPlotNoTicks(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 1})
	opts := DefaultYearOptions()
	opts.MonthTicks = calendar.NoTicks()
	opts.DayTicks = calendar.NoTicks()

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)
	assert.Empty(t, ax.XTicks())
	assert.Empty(t, ax.YTicks())
}

func TestYearPlotTickOutOfRange(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 1})

	opts := DefaultYearOptions()
	opts.MonthTicks = calendar.TickList(12)
	_, err := YearPlot(nil, data, opts)
	assert.Error(t, err)

	opts = DefaultYearOptions()
	opts.DayLabels = []string{"Mon", "Tue"}
	opts.DayTicks = calendar.TickList(3)
	_, err = YearPlot(nil, data, opts)
	assert.Error(t, err)
}

func TestYearPlotCellText(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})
	opts := DefaultYearOptions()
	opts.TextFormat = "%.0f"
	opts.TextFiller = "-"

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, a := range ax.artists {
		if l, ok := a.(*label); ok {
			counts[l.text]++
		}
	}
	assert.Equal(t, map[string]int{"5": 1, "-": 364}, counts)

	img, err := ax.Figure().PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))
}

func TestYearPlotLineColor(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})

	fig := NewFigure(10, 2.5)
	ax := fig.Subplots(1)[0]
	ax.Facecolor = Transparent
	_, err := YearPlot(ax, data, DefaultYearOptions())
	require.NoError(t, err)
	assert.Equal(t, MustParseColor("white"), dataMesh(t, ax).edge)

	ax = fig.AddAxes(Rect{Left: 0.1, Bottom: 0.1, Width: 0.8, Height: 0.8})
	ax.Facecolor = MustParseColor("black")
	_, err = YearPlot(ax, data, DefaultYearOptions())
	require.NoError(t, err)
	assert.Equal(t, MustParseColor("black"), dataMesh(t, ax).edge)

	opts := DefaultYearOptions()
	opts.LineColor = "#ff0000"
	ax, err = YearPlot(nil, data, opts)
	require.NoError(t, err)
	assert.Equal(t, MustParseColor("red"), dataMesh(t, ax).edge)
}

func TestYearPlotExtra(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})

	opts := DefaultYearOptions()
	opts.Extra = map[string]any{"alpha": 0.5, "dash": []any{2, 1.5}}
	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)
	m := dataMesh(t, ax)
	assert.Equal(t, 0.5, m.alpha)
	assert.Equal(t, []float64{2, 1.5}, m.dash)

	_, err = ax.Figure().PNG()
	require.NoError(t, err)

	opts.Extra = map[string]any{"hatch": "//"}
	_, err = YearPlot(nil, data, opts)
	assert.Error(t, err)

	opts.Extra = map[string]any{"alpha": 2}
	_, err = YearPlot(nil, data, opts)
	assert.Error(t, err)
}

func TestYearPlotInvalidStyle(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})

	opts := DefaultYearOptions()
	opts.Cmap = "rainbow-unicorn"
	_, err := YearPlot(nil, data, opts)
	assert.Error(t, err)

	opts = DefaultYearOptions()
	opts.FillColor = "#zzz"
	_, err = YearPlot(nil, data, opts)
	assert.Error(t, err)
}

func TestYearPlotNoLines(t *testing.T) {
	data := seriesOf(t, map[time.Time]float64{
		day(2019, time.January, 1): 5,
		day(2019, time.May, 20):    1,
	})
	opts := DefaultYearOptions()
	opts.Cmap = "YlGn"
	opts.FillColor = "grey"
	opts.LineWidth = 0

	ax, err := YearPlot(nil, data, opts)
	require.NoError(t, err)

	img, err := ax.Figure().Image()
	require.NoError(t, err)
	w, h := ax.Figure().PixelSize()
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())
}

func TestYearPlotKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	data := series.New([]series.Point{
		{Time: time.Date(2019, 1, 1, 1, 0, 0, 0, loc), Value: 4},
	})

	ax, err := YearPlot(nil, data, DefaultYearOptions())
	require.NoError(t, err)
	v, ok := ax.Grid().At(calendar.RowOf(1), 0)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
	assert.False(t, math.IsNaN(v))
}
