package heatmap

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/christophergentle/calplot/internal/series"
)

// ErrNoData is returned when there are no observations to plot.
var ErrNoData = errors.New("no data to plot")

// FigSize is a figure size in inches.
type FigSize struct {
	Width  float64
	Height float64
}

// CalOptions controls a multi-year calendar plot.
type CalOptions struct {
	How series.Agg

	YearLabels     bool
	YearAscending  bool
	YearLabelColor string
	YearLabelSize  float64 // points

	// Colorbar forces the color scale on or off. Nil shows it when the data
	// has more than one distinct value.
	Colorbar *bool
	// FigSize overrides the default of 10 inches wide (plus 2.5 with a
	// colorbar) by 1.7 inches per year.
	FigSize *FigSize

	Title       string
	TitleSize   float64 // points
	TightLayout bool
	DPI         float64 // zero keeps DefaultDPI

	// Year styles every panel. Its Year and How are ignored.
	Year YearOptions
}

// DefaultCalOptions returns the default multi-year options.
func DefaultCalOptions() CalOptions {
	return CalOptions{
		How:            series.AggSum,
		YearLabels:     true,
		YearAscending:  true,
		YearLabelColor: "gray",
		YearLabelSize:  30,
		TitleSize:      12,
		TightLayout:    true,
		Year:           DefaultYearOptions(),
	}
}

// CalPlot draws every year of data as a stacked calendar heatmap, one panel
// per year sharing the same color scale and width.
func CalPlot(data *series.Series, opts CalOptions) (*Figure, []*Axes, error) {
	if data == nil || data.Len() == 0 {
		return nil, nil, ErrNoData
	}

	years := data.Years()
	if !opts.YearAscending {
		for i, j := 0, len(years)-1; i < j; i, j = i+1, j-1 {
			years[i], years[j] = years[j], years[i]
		}
	}

	showColorbar := data.NUnique() > 1
	if opts.Colorbar != nil {
		showColorbar = *opts.Colorbar
	}

	size := FigSize{Width: 10, Height: 1.7 * float64(len(years))}
	if showColorbar {
		size.Width += 2.5
	}
	if opts.FigSize != nil {
		size = *opts.FigSize
	}
	dpi := float64(DefaultDPI)
	if opts.DPI > 0 {
		dpi = opts.DPI
	}
	if err := checkCanvas(size.Width, size.Height, dpi); err != nil {
		return nil, nil, fmt.Errorf("cannot plot %d years: %w", len(years), err)
	}

	// Resample once and hand every panel the same daily series.
	var (
		byDay *series.Daily
		err   error
	)
	if opts.How == series.AggNone {
		byDay = data.AsDaily()
	} else if byDay, err = data.Resample(opts.How); err != nil {
		return nil, nil, fmt.Errorf("failed to resample by day: %w", err)
	}

	labelColor, err := ParseColor(orDefault(opts.YearLabelColor, "gray"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid year label color: %w", err)
	}
	labelSize := opts.YearLabelSize
	if labelSize <= 0 {
		labelSize = 30
	}

	fig := NewFigure(size.Width, size.Height)
	fig.DPI = dpi
	axes := fig.Subplots(len(years))

	yearOpts := opts.Year
	maxWeeks := 0.0
	for i, year := range years {
		yearOpts.Year = year
		if _, err := YearPlotDaily(axes[i], byDay, yearOpts); err != nil {
			return nil, nil, fmt.Errorf("failed to plot %d: %w", year, err)
		}
		_, hi := axes[i].XLim()
		maxWeeks = math.Max(maxWeeks, hi)

		if opts.YearLabels {
			axes[i].SetYLabel(strconv.Itoa(year), TextStyle{Size: labelSize, Color: labelColor, Bold: true})
		}
	}

	// 2012 spans 54 columns, most years 53: keep every panel equally wide.
	for _, ax := range axes {
		ax.SetXLim(0, maxWeeks)
	}

	if showColorbar && len(axes) == 1 {
		fig.ColorbarBeside(*axes[0].Mappable(), axes[0])
	}

	if opts.Title != "" {
		titleSize := opts.TitleSize
		if titleSize <= 0 {
			titleSize = 12
		}
		fig.SetTitle(opts.Title, &TextStyle{Size: titleSize, Color: MustParseColor("black")})
	}

	if opts.TightLayout {
		if err := fig.TightLayout(); err != nil {
			return nil, nil, fmt.Errorf("failed to lay out figure: %w", err)
		}
	}

	if showColorbar && len(axes) > 1 {
		p := fig.SubplotParams()
		p.Right = math.Min(p.Right, 0.8)
		fig.SubplotsAdjust(p)
		cax := fig.AddAxes(Rect{Left: 0.85, Bottom: 0.025, Width: 0.02, Height: 0.95})
		fig.Colorbar(*axes[0].Mappable(), cax)
	}

	return fig, axes, nil
}
