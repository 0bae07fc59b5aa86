package heatmap

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/christophergentle/calplot/internal/calendar"
	"github.com/christophergentle/calplot/internal/series"
)

var (
	defaultDayLabels   = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	defaultMonthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// YearOptions controls how a single year is drawn. Start from
// DefaultYearOptions; empty color and label fields fall back to the defaults.
type YearOptions struct {
	// Year to draw. Zero picks the earliest year in the data.
	Year int
	// How aggregates raw observations by day. AggNone treats the data as
	// already daily.
	How series.Agg

	// Vmin and Vmax anchor the color scale; nil uses the data range.
	Vmin *float64
	Vmax *float64
	Cmap string
	// Colormap overrides Cmap when set.
	Colormap Colormap

	FillColor string  // days without data
	LineWidth float64 // points; lines between days and around months
	LineColor string  // empty uses the axes background, or white if transparent
	EdgeColor string  // month outlines

	DayLabels   []string
	DayTicks    calendar.Ticks
	MonthLabels []string
	MonthTicks  calendar.Ticks

	// MonthLabelOffset places month labels over the column of that day of
	// the month. Zero centers them on the month outline.
	MonthLabelOffset int

	DropZero series.DropZero

	// TextFormat is a fmt verb applied to each day's value, e.g. "%.0f".
	// Empty draws no cell text.
	TextFormat string
	TextFiller string // text for days of the year without data
	TextColor  string

	// Extra holds further mesh styling: "alpha" (number in [0, 1]) and
	// "dash" (dash lengths in points).
	Extra map[string]any
}

// DefaultYearOptions returns the default style: daily sums on viridis.
func DefaultYearOptions() YearOptions {
	return YearOptions{
		How:         series.AggSum,
		Cmap:        DefaultColormap,
		FillColor:   "whitesmoke",
		LineWidth:   1,
		EdgeColor:   "gray",
		DayLabels:   defaultDayLabels,
		MonthLabels: defaultMonthLabels,
		TextColor:   "black",
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// YearPlot draws one year of data as a calendar heatmap onto ax. A nil ax
// draws onto a new figure. The returned axes carry the grid, color scale and
// month outlines that were drawn.
func YearPlot(ax *Axes, data *series.Series, opts YearOptions) (*Axes, error) {
	var (
		byDay *series.Daily
		err   error
	)
	if opts.How == series.AggNone {
		byDay = data.AsDaily()
	} else if byDay, err = data.Resample(opts.How); err != nil {
		return nil, fmt.Errorf("failed to resample by day: %w", err)
	}
	return YearPlotDaily(ax, byDay, opts)
}

// YearPlotDaily is YearPlot for data already sampled by day; opts.How is
// ignored.
func YearPlotDaily(ax *Axes, byDay *series.Daily, opts YearOptions) (*Axes, error) {
	year := opts.Year
	if year == 0 {
		years := byDay.Years()
		if len(years) == 0 {
			return nil, ErrNoData
		}
		year = years[0]
	}

	byDay, _ = opts.DropZero.Apply(byDay)

	norm := Norm{Vmin: byDay.Min(), Vmax: byDay.Max()}
	if opts.Vmin != nil {
		norm.Vmin = *opts.Vmin
	}
	if opts.Vmax != nil {
		norm.Vmax = *opts.Vmax
	}

	cmap := opts.Colormap
	if cmap == nil {
		var err error
		if cmap, err = LookupColormap(opts.Cmap); err != nil {
			return nil, err
		}
	}

	style, err := resolveStyle(opts)
	if err != nil {
		return nil, err
	}

	if ax == nil {
		ax = NewFigure(10, 2.5).Subplots(1)[0]
	}

	lineColor := ax.Facecolor
	if opts.LineColor != "" {
		if lineColor, err = ParseColor(opts.LineColor); err != nil {
			return nil, fmt.Errorf("invalid line color: %w", err)
		}
	} else if isTransparent(lineColor) {
		lineColor = MustParseColor("white")
	}

	grid, err := calendar.Layout(year, byDay.InYear(year).Reindex(year).Values())
	if err != nil {
		return nil, fmt.Errorf("failed to lay out %d: %w", year, err)
	}

	fill := make([][]float64, calendar.Rows)
	for r := range fill {
		fill[r] = make([]float64, grid.Weeks)
		for c := range fill[r] {
			fill[r][c] = math.NaN()
			if grid.Filled(r, c) {
				fill[r][c] = 1
			}
		}
	}
	ax.add(&mesh{
		z:        zFill,
		values:   fill,
		mappable: Mappable{Cmap: NewListed(style.fill), Norm: Norm{Vmin: 0, Vmax: 1}},
		alpha:    1,
	})

	mappable := Mappable{Cmap: cmap, Norm: norm}
	ax.add(&mesh{
		z:         zData,
		values:    grid.Values[:],
		mappable:  mappable,
		alpha:     style.alpha,
		lineWidth: opts.LineWidth,
		edge:      lineColor,
		dash:      style.dash,
	})

	ax.SetXLim(0, float64(grid.Weeks))
	ax.SetYLim(0, calendar.Rows)
	ax.SetAspectEqual(true)

	if err := setYearTicks(ax, year, opts); err != nil {
		return nil, err
	}

	if opts.TextFormat != "" {
		textStyle := TextStyle{Size: 10, Color: style.text}
		for r := 0; r < calendar.Rows; r++ {
			for c := 0; c < grid.Weeks; c++ {
				var content string
				if v, ok := grid.At(r, c); ok {
					content = fmt.Sprintf(opts.TextFormat, v)
				} else if grid.Filled(r, c) {
					content = opts.TextFiller
				} else {
					continue
				}
				ax.add(&label{x: float64(c) + 0.5, y: float64(r) + 0.5, text: content, style: textStyle})
			}
		}
	}

	outlines := calendar.MonthOutlines(year)
	for _, p := range outlines {
		ax.add(&outline{poly: p, edge: style.edge, lineWidth: opts.LineWidth})
	}

	ax.grid = grid
	ax.mappable = &mappable
	ax.outlines = outlines
	return ax, nil
}

type yearStyle struct {
	fill  color.NRGBA
	edge  color.NRGBA
	text  color.NRGBA
	alpha float64
	dash  []float64
}

func resolveStyle(opts YearOptions) (yearStyle, error) {
	s := yearStyle{alpha: 1}
	var err error
	if s.fill, err = ParseColor(orDefault(opts.FillColor, "whitesmoke")); err != nil {
		return s, fmt.Errorf("invalid fill color: %w", err)
	}
	if s.edge, err = ParseColor(orDefault(opts.EdgeColor, "gray")); err != nil {
		return s, fmt.Errorf("invalid edge color: %w", err)
	}
	if s.text, err = ParseColor(orDefault(opts.TextColor, "black")); err != nil {
		return s, fmt.Errorf("invalid text color: %w", err)
	}

	for key, v := range opts.Extra {
		switch key {
		case "alpha":
			a, ok := toFloat(v)
			if !ok || a < 0 || a > 1 {
				return s, fmt.Errorf("invalid alpha %v", v)
			}
			s.alpha = a
		case "dash":
			if s.dash, err = toFloats(v); err != nil {
				return s, fmt.Errorf("invalid dash: %w", err)
			}
		default:
			return s, fmt.Errorf("unsupported mesh option %q", key)
		}
	}
	return s, nil
}

func setYearTicks(ax *Axes, year int, opts YearOptions) error {
	monthLabels := opts.MonthLabels
	if monthLabels == nil {
		monthLabels = defaultMonthLabels
	}
	if opts.MonthLabelOffset < 0 {
		return fmt.Errorf("invalid month label offset %d", opts.MonthLabelOffset)
	}
	var xticks []Tick
	for _, i := range opts.MonthTicks.Indices(len(monthLabels)) {
		if i < 0 || i >= len(monthLabels) || i >= 12 {
			return fmt.Errorf("month tick %d out of range for %d labels", i, len(monthLabels))
		}
		month := time.Month(i + 1)
		pos := calendar.MonthCenter(year, month)
		if opts.MonthLabelOffset > 0 {
			pos = calendar.MonthDayCenter(year, month, opts.MonthLabelOffset)
		}
		xticks = append(xticks, Tick{Pos: pos, Label: monthLabels[i]})
	}
	ax.SetXTicks(xticks)

	dayLabels := opts.DayLabels
	if dayLabels == nil {
		dayLabels = defaultDayLabels
	}
	var yticks []Tick
	for _, i := range opts.DayTicks.Indices(len(dayLabels)) {
		if i < 0 || i >= len(dayLabels) || i >= calendar.Rows {
			return fmt.Errorf("day tick %d out of range for %d labels", i, len(dayLabels))
		}
		yticks = append(yticks, Tick{Pos: calendar.DayCenter(i), Label: dayLabels[i]})
	}
	ax.SetYTicks(yticks)
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toFloats(v any) ([]float64, error) {
	switch list := v.(type) {
	case []float64:
		return list, nil
	case []any:
		out := make([]float64, len(list))
		for i, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a number", i, item)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of numbers, got %T", v)
}
