package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/christophergentle/calplot/internal/calendar"
	"github.com/christophergentle/calplot/internal/heatmap"
	"github.com/christophergentle/calplot/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
input:
  path: commits.csv
  date_column: day
  timezone: Europe/Berlin
output:
  path: out/commits.png
  dpi: 150
plot:
  how: mean
  cmap: YlGn
  line_width: 0
  day_ticks: [0, 2, 4, 6]
  month_ticks: 3
  month_label_offset: 15
  dropzero: false
  year_labels: false
  colorbar: true
  width: 12
  height: 4
  title: Commits
storage:
  bucket: calendars
  prefix: daily/
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "commits.csv", cfg.Input.Path)
	assert.Equal(t, "day", cfg.Input.DateColumn)
	assert.Equal(t, "value", cfg.Input.ValueColumn)
	assert.Equal(t, 150.0, cfg.Output.DPI)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "calendars", cfg.Storage.Bucket)

	assert.Equal(t, calendar.TickList(0, 2, 4, 6), cfg.Plot.DayTicks.Ticks)
	assert.Equal(t, calendar.TickEvery(3), cfg.Plot.MonthTicks.Ticks)
	assert.Equal(t, series.DropZeroOff, cfg.Plot.DropZero.DropZero)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "calplot.png", cfg.Output.Path)
	assert.Equal(t, 100.0, cfg.Output.DPI)
	assert.Equal(t, 100, cfg.Server.MaxYears)
	assert.Equal(t, calendar.Ticks{}, cfg.Plot.DayTicks.Ticks)
	assert.Equal(t, series.DropZeroAuto, cfg.Plot.DropZero.DropZero)
}

func TestParseTicksForms(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    calendar.Ticks
		wantErr bool
	}{
		{"all", "plot: {day_ticks: true}", calendar.AllTicks(), false},
		{"none", "plot: {day_ticks: false}", calendar.NoTicks(), false},
		{"stride", "plot: {day_ticks: 2}", calendar.TickEvery(2), false},
		{"list", "plot: {day_ticks: [1, 3]}", calendar.TickList(1, 3), false},
		{"zero stride", "plot: {day_ticks: 0}", calendar.Ticks{}, true},
		{"string", "plot: {day_ticks: some}", calendar.Ticks{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Plot.DayTicks.Ticks)
		})
	}
}

func TestParseDropZero(t *testing.T) {
	for in, want := range map[string]series.DropZero{
		"true":  series.DropZeroOn,
		"false": series.DropZeroOff,
		"auto":  series.DropZeroAuto,
	} {
		cfg, err := Parse([]byte("plot: {dropzero: " + in + "}"))
		require.NoError(t, err, in)
		assert.Equal(t, want, cfg.Plot.DropZero.DropZero, in)
	}

	_, err := Parse([]byte("plot: {dropzero: [1]}"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown aggregation", "plot: {how: mode}"},
		{"negative line width", "plot: {line_width: -1}"},
		{"short day labels", "plot: {day_labels: [M, T]}"},
		{"width without height", "plot: {width: 10}"},
		{"dsn without query", "input: {dsn: 'postgres://localhost/db'}"},
		{"dpi too large", "output: {dpi: 2000}"},
		{"month label offset past month end", "plot: {month_label_offset: 40}"},
		{"negative max years", "server: {max_years: -1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var cerr *ConfigError
			assert.ErrorAs(t, err, &cerr)
			assert.NotEmpty(t, cerr.Details)
		})
	}
}

func TestCalOptions(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	opts, err := cfg.Plot.CalOptions()
	require.NoError(t, err)

	assert.Equal(t, series.AggMean, opts.How)
	assert.False(t, opts.YearLabels)
	assert.True(t, opts.YearAscending)
	require.NotNil(t, opts.Colorbar)
	assert.True(t, *opts.Colorbar)
	assert.Equal(t, &heatmap.FigSize{Width: 12, Height: 4}, opts.FigSize)
	assert.Equal(t, "Commits", opts.Title)
	assert.True(t, opts.TightLayout)

	assert.Equal(t, "YlGn", opts.Year.Cmap)
	assert.Equal(t, 0.0, opts.Year.LineWidth)
	assert.Equal(t, "whitesmoke", opts.Year.FillColor)
	assert.Equal(t, calendar.TickEvery(3), opts.Year.MonthTicks)
	assert.Equal(t, 15, opts.Year.MonthLabelOffset)
	assert.Equal(t, series.DropZeroOff, opts.Year.DropZero)
}

func TestYearOptionsDefaults(t *testing.T) {
	opts, err := PlotConfig{}.YearOptions()
	require.NoError(t, err)

	def := heatmap.DefaultYearOptions()
	assert.Equal(t, def.How, opts.How)
	assert.Equal(t, def.LineWidth, opts.LineWidth)
	assert.Equal(t, def.Cmap, opts.Cmap)
}

func TestYearOptionsRejectsUnknownColormap(t *testing.T) {
	_, err := PlotConfig{Cmap: "jet"}.YearOptions()
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CALPLOT_INPUT", "data.xlsx")
	t.Setenv("CALPLOT_OUTPUT", "cal.png")
	t.Setenv("CALPLOT_YEAR", "2021")
	t.Setenv("CALPLOT_BUCKET", "bucket")
	t.Setenv("CALPLOT_ADDR", ":9000")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "data.xlsx", cfg.Input.Path)
	assert.Equal(t, "cal.png", cfg.Output.Path)
	assert.Equal(t, 2021, cfg.Plot.Year)
	assert.Equal(t, "bucket", cfg.Storage.Bucket)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestGetConfigPathFromEnv(t *testing.T) {
	t.Setenv("CALPLOT_CONFIG", "/etc/calplot.yaml")
	assert.Equal(t, "/etc/calplot.yaml", GetConfigPath())
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "commits.csv", cfg.Input.Path)
	assert.Equal(t, "calplot-daily", cfg.Storage.Table)

	opts, err := cfg.Plot.CalOptions()
	require.NoError(t, err)
	assert.Equal(t, series.AggSum, opts.How)
	assert.Equal(t, "viridis", opts.Year.Cmap)
}
