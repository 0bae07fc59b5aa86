package heatmap

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/christophergentle/calplot/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoYears(t *testing.T) *series.Series {
	t.Helper()
	return seriesOf(t, map[time.Time]float64{
		day(2012, time.February, 29): 3,
		day(2012, time.December, 31): 1,
		day(2013, time.July, 4):      7,
	})
}

func TestCalPlotEmpty(t *testing.T) {
	_, _, err := CalPlot(series.New(nil), DefaultCalOptions())
	assert.ErrorIs(t, err, ErrNoData)

	_, _, err = CalPlot(nil, DefaultCalOptions())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCalPlotSharesWidthAcrossYears(t *testing.T) {
	fig, axes, err := CalPlot(twoYears(t), DefaultCalOptions())
	require.NoError(t, err)
	require.Len(t, axes, 2)

	assert.Equal(t, 54, axes[0].Grid().Weeks)
	assert.Equal(t, 53, axes[1].Grid().Weeks)
	for _, ax := range axes {
		lo, hi := ax.XLim()
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 54.0, hi)
	}

	assert.Equal(t, "2012", axes[0].YLabel())
	assert.Equal(t, "2013", axes[1].YLabel())
	assert.Equal(t, 12.5, fig.Width)
	assert.InDelta(t, 3.4, fig.Height, 1e-9)
}

func TestCalPlotSharedScale(t *testing.T) {
	_, axes, err := CalPlot(twoYears(t), DefaultCalOptions())
	require.NoError(t, err)

	// Gap days sum to zero and outnumber the real days.
	want := Norm{Vmin: 1, Vmax: 7}
	for _, ax := range axes {
		assert.Equal(t, want, ax.Mappable().Norm)
	}
}

func TestCalPlotDescending(t *testing.T) {
	opts := DefaultCalOptions()
	opts.YearAscending = false
	opts.YearLabels = false

	_, axes, err := CalPlot(twoYears(t), opts)
	require.NoError(t, err)
	require.Len(t, axes, 2)
	assert.Equal(t, 2013, axes[0].Grid().Year)
	assert.Equal(t, 2012, axes[1].Grid().Year)
	assert.Empty(t, axes[0].YLabel())
}

func TestCalPlotColorbarAuto(t *testing.T) {
	constant := seriesOf(t, map[time.Time]float64{
		day(2019, time.January, 1): 5,
		day(2019, time.June, 1):    5,
	})
	fig, _, err := CalPlot(constant, DefaultCalOptions())
	require.NoError(t, err)
	assert.False(t, fig.HasColorbar())
	assert.Equal(t, 10.0, fig.Width)

	varied := seriesOf(t, map[time.Time]float64{
		day(2019, time.January, 1): 5,
		day(2019, time.June, 1):    6,
	})
	fig, _, err = CalPlot(varied, DefaultCalOptions())
	require.NoError(t, err)
	assert.True(t, fig.HasColorbar())
	assert.Equal(t, 12.5, fig.Width)
}

func TestCalPlotColorbarForced(t *testing.T) {
	constant := seriesOf(t, map[time.Time]float64{day(2019, time.January, 1): 5})

	on := true
	opts := DefaultCalOptions()
	opts.Colorbar = &on
	fig, _, err := CalPlot(constant, opts)
	require.NoError(t, err)
	assert.True(t, fig.HasColorbar())

	img, err := fig.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))

	off := false
	opts.Colorbar = &off
	fig, _, err = CalPlot(twoYears(t), opts)
	require.NoError(t, err)
	assert.False(t, fig.HasColorbar())
}

func TestCalPlotMultiYearColorbarPlacement(t *testing.T) {
	fig, axes, err := CalPlot(twoYears(t), DefaultCalOptions())
	require.NoError(t, err)

	assert.LessOrEqual(t, fig.SubplotParams().Right, 0.8)
	require.Len(t, fig.Axes(), len(axes)+1)
	cax := fig.Axes()[len(axes)]
	assert.Equal(t, Rect{Left: 0.85, Bottom: 0.025, Width: 0.02, Height: 0.95}, cax.Rect())
}

func TestCalPlotTightLayout(t *testing.T) {
	fig, axes, err := CalPlot(twoYears(t), DefaultCalOptions())
	require.NoError(t, err)

	p := fig.SubplotParams()
	assert.Greater(t, p.Left, 0.0)
	assert.Less(t, p.Top, 1.0)
	assert.Greater(t, p.Bottom, 0.0)
	assert.Greater(t, axes[0].Rect().Bottom, axes[1].Rect().Bottom+axes[1].Rect().Height)

	opts := DefaultCalOptions()
	opts.TightLayout = false
	opts.Colorbar = new(bool)
	fig, _, err = CalPlot(twoYears(t), opts)
	require.NoError(t, err)
	assert.Equal(t, DefaultSubplotParams(), fig.SubplotParams())
}

func TestCalPlotTooSmall(t *testing.T) {
	opts := DefaultCalOptions()
	opts.FigSize = &FigSize{Width: 1, Height: 0.5}
	_, _, err := CalPlot(twoYears(t), opts)
	assert.Error(t, err)
}

func TestCalPlotRendersPNG(t *testing.T) {
	opts := DefaultCalOptions()
	opts.Title = "Daily commits"
	opts.Year.TextFormat = "%.0f"

	fig, _, err := CalPlot(twoYears(t), opts)
	require.NoError(t, err)
	assert.Equal(t, "Daily commits", fig.Title())

	data, err := fig.PNG()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1250, img.Bounds().Dx())
	assert.Equal(t, 340, img.Bounds().Dy())
}

func TestCalPlotSavePNG(t *testing.T) {
	fig, _, err := CalPlot(twoYears(t), DefaultCalOptions())
	require.NoError(t, err)

	path := t.TempDir() + "/calendar.png"
	require.NoError(t, fig.SavePNG(path))
}

func TestCalPlotWithoutResampling(t *testing.T) {
	data := series.New([]series.Point{
		{Time: time.Date(2019, 5, 1, 8, 0, 0, 0, time.UTC), Value: 2},
		{Time: time.Date(2019, 5, 1, 20, 0, 0, 0, time.UTC), Value: 9},
	})
	opts := DefaultCalOptions()
	opts.How = series.AggNone

	_, axes, err := CalPlot(data, opts)
	require.NoError(t, err)

	g := axes[0].Grid()
	cell, _ := g.Cell(day(2019, time.May, 1))
	v, ok := g.At(cell.Row, cell.Col)
	assert.True(t, ok)
	assert.Equal(t, 9.0, v)
}

func TestCalPlotRejectsOversizedFigure(t *testing.T) {
	var points []series.Point
	for y := 1; y <= 9999; y++ {
		points = append(points, series.Point{Time: day(y, time.January, 1), Value: float64(y)})
	}

	_, _, err := CalPlot(series.New(points), DefaultCalOptions())
	assert.ErrorIs(t, err, ErrFigureTooLarge)

	opts := DefaultCalOptions()
	opts.FigSize = &FigSize{Width: 10, Height: 3.4}
	opts.DPI = 50
	fig, axes, err := CalPlot(twoYears(t), opts)
	require.NoError(t, err)
	assert.Len(t, axes, 2)
	assert.Equal(t, 50.0, fig.DPI)
}

func TestFigureRenderRejectsOversizedCanvas(t *testing.T) {
	fig := NewFigure(1000, 1000)
	_, err := fig.PNG()
	assert.ErrorIs(t, err, ErrFigureTooLarge)
}
