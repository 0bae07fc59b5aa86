package config

import (
	"fmt"

	"github.com/christophergentle/calplot/internal/calendar"
	"github.com/christophergentle/calplot/internal/heatmap"
	"github.com/christophergentle/calplot/internal/series"
	"gopkg.in/yaml.v3"
)

// Ticks selects labels in YAML as true (all), false (none), a list of
// indices or a stride.
type Ticks struct {
	calendar.Ticks
}

func (t *Ticks) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			var all bool
			if err := node.Decode(&all); err != nil {
				return err
			}
			if all {
				t.Ticks = calendar.AllTicks()
			} else {
				t.Ticks = calendar.NoTicks()
			}
			return nil
		case "!!int":
			var n int
			if err := node.Decode(&n); err != nil {
				return err
			}
			if n <= 0 {
				return fmt.Errorf("line %d: tick stride must be positive, got %d", node.Line, n)
			}
			t.Ticks = calendar.TickEvery(n)
			return nil
		}
	case yaml.SequenceNode:
		var indices []int
		if err := node.Decode(&indices); err != nil {
			return err
		}
		t.Ticks = calendar.TickList(indices...)
		return nil
	}
	return fmt.Errorf("line %d: ticks must be a bool, a stride or a list of indices", node.Line)
}

// DropZero accepts true, false or "auto".
type DropZero struct {
	series.DropZero
}

func (d *DropZero) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dropzero must be true, false or auto", node.Line)
	}
	p, err := series.ParseDropZero(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.DropZero = p
	return nil
}

func (p PlotConfig) agg() (series.Agg, error) {
	if p.How == "" {
		return series.AggSum, nil
	}
	return series.ParseAgg(p.How)
}

// YearOptions converts the plot settings for a single-year plot.
func (p PlotConfig) YearOptions() (heatmap.YearOptions, error) {
	opts := heatmap.DefaultYearOptions()

	how, err := p.agg()
	if err != nil {
		return opts, &ConfigError{Message: "invalid plot.how", Details: []string{err.Error()}}
	}
	opts.How = how
	opts.Year = p.Year

	opts.Vmin = p.Vmin
	opts.Vmax = p.Vmax
	if p.Cmap != "" {
		if _, err := heatmap.LookupColormap(p.Cmap); err != nil {
			return opts, &ConfigError{Message: "invalid plot.cmap", Details: []string{err.Error()}}
		}
		opts.Cmap = p.Cmap
	}
	if p.FillColor != "" {
		opts.FillColor = p.FillColor
	}
	if p.LineWidth != nil {
		opts.LineWidth = *p.LineWidth
	}
	opts.LineColor = p.LineColor
	if p.EdgeColor != "" {
		opts.EdgeColor = p.EdgeColor
	}

	if len(p.DayLabels) > 0 {
		opts.DayLabels = p.DayLabels
	}
	opts.DayTicks = p.DayTicks.Ticks
	if len(p.MonthLabels) > 0 {
		opts.MonthLabels = p.MonthLabels
	}
	opts.MonthTicks = p.MonthTicks.Ticks
	opts.MonthLabelOffset = p.MonthLabelOffset
	opts.DropZero = p.DropZero.DropZero

	opts.TextFormat = p.TextFormat
	opts.TextFiller = p.TextFiller
	if p.TextColor != "" {
		opts.TextColor = p.TextColor
	}
	return opts, nil
}

// CalOptions converts the plot settings for a multi-year plot.
func (p PlotConfig) CalOptions() (heatmap.CalOptions, error) {
	opts := heatmap.DefaultCalOptions()

	year, err := p.YearOptions()
	if err != nil {
		return opts, err
	}
	opts.How = year.How
	opts.Year = year

	if p.YearLabels != nil {
		opts.YearLabels = *p.YearLabels
	}
	if p.YearAscending != nil {
		opts.YearAscending = *p.YearAscending
	}
	if p.YearLabelColor != "" {
		opts.YearLabelColor = p.YearLabelColor
	}
	if p.YearLabelSize > 0 {
		opts.YearLabelSize = p.YearLabelSize
	}
	opts.Colorbar = p.Colorbar
	if p.Width > 0 && p.Height > 0 {
		opts.FigSize = &heatmap.FigSize{Width: p.Width, Height: p.Height}
	}
	opts.Title = p.Title
	if p.TightLayout != nil {
		opts.TightLayout = *p.TightLayout
	}
	return opts, nil
}
