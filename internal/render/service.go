// Package render turns a time series and plot settings into PNG bytes.
package render

import (
	"context"
	"fmt"
	"log"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/heatmap"
	"github.com/christophergentle/calplot/internal/metrics"
	"github.com/christophergentle/calplot/internal/series"
)

// Result is a rendered heatmap
type Result struct {
	PNG    []byte
	Width  int
	Height int
	Years  []int
	Cells  int
}

// Service renders heatmaps and records metrics
type Service struct {
	metrics *metrics.Collector
}

// NewService creates a render service. A nil collector disables metrics.
func NewService(m *metrics.Collector) *Service {
	return &Service{metrics: m}
}

// Plot draws data with the plot settings. A configured year draws that
// single year, otherwise every year is stacked.
func Plot(data *series.Series, plot config.PlotConfig, dpi float64) (*heatmap.Figure, []*heatmap.Axes, error) {
	if plot.Year > 0 {
		return plotYear(data, plot, dpi)
	}

	opts, err := plot.CalOptions()
	if err != nil {
		return nil, nil, err
	}
	opts.DPI = dpi
	return heatmap.CalPlot(data, opts)
}

func plotYear(data *series.Series, plot config.PlotConfig, dpi float64) (*heatmap.Figure, []*heatmap.Axes, error) {
	opts, err := plot.YearOptions()
	if err != nil {
		return nil, nil, err
	}
	cal, err := plot.CalOptions()
	if err != nil {
		return nil, nil, err
	}

	width, height := 10.0, 2.5
	if cal.FigSize != nil {
		width, height = cal.FigSize.Width, cal.FigSize.Height
	}
	fig := heatmap.NewFigure(width, height)
	if dpi > 0 {
		fig.DPI = dpi
	}
	ax := fig.Subplots(1)[0]
	if _, err := heatmap.YearPlot(ax, data, opts); err != nil {
		return nil, nil, err
	}

	showColorbar := data.NUnique() > 1
	if cal.Colorbar != nil {
		showColorbar = *cal.Colorbar
	}
	if showColorbar {
		fig.ColorbarBeside(*ax.Mappable(), ax)
	}
	if cal.Title != "" {
		fig.SetTitle(cal.Title, nil)
	}
	if cal.TightLayout {
		if err := fig.TightLayout(); err != nil {
			return nil, nil, fmt.Errorf("failed to lay out figure: %w", err)
		}
	}
	return fig, []*heatmap.Axes{ax}, nil
}

// Render draws data and encodes it as PNG
func (s *Service) Render(ctx context.Context, data *series.Series, src string, plot config.PlotConfig, dpi float64) (*Result, error) {
	timer := s.timer("plot")
	fig, axes, err := Plot(data, plot, dpi)
	if err != nil {
		s.recordError("plot")
		return nil, err
	}
	timer.ObserveDuration()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer = s.timer("encode")
	png, err := fig.PNG()
	if err != nil {
		s.recordError("encode")
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	elapsed := timer.ObserveDuration()

	result := &Result{PNG: png}
	result.Width, result.Height = fig.PixelSize()
	for _, ax := range axes {
		result.Years = append(result.Years, ax.Grid().Year)
		result.Cells += ax.Grid().Count()
	}

	if s.metrics != nil {
		s.metrics.RecordRender(src, result.Cells, len(png))
	}
	log.Printf("Rendered %d year(s) from %s: %d cells, %dx%d px, %d bytes (encoded in %v)",
		len(result.Years), src, result.Cells, result.Width, result.Height, len(png), elapsed)
	return result, nil
}

// RenderConfig loads the configured input and renders it
func (s *Service) RenderConfig(ctx context.Context, cfg *config.Config) (*Result, error) {
	timer := s.timer("load")
	data, kind, err := Load(ctx, cfg.Input)
	if err != nil {
		s.recordError("load")
		return nil, err
	}
	timer.ObserveDuration()
	log.Printf("Loaded %d observations from %s", data.Len(), kind)

	return s.Render(ctx, data, kind, cfg.Plot, cfg.Output.DPI)
}

func (s *Service) timer(stage string) *metrics.Timer {
	if s.metrics == nil {
		return metrics.StartTimer(nil)
	}
	return s.metrics.StageTimer(stage)
}

func (s *Service) recordError(stage string) {
	if s.metrics != nil {
		s.metrics.RecordRenderError(stage)
	}
}
