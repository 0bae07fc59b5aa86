package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Plot    PlotConfig    `yaml:"plot"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// InputConfig says where the time series comes from: a CSV or XLSX file, or
// a PostgreSQL query.
type InputConfig struct {
	Path        string `yaml:"path"`
	Sheet       string `yaml:"sheet"`
	DateColumn  string `yaml:"date_column"`
	ValueColumn string `yaml:"value_column"`
	DateLayout  string `yaml:"date_layout"`
	Timezone    string `yaml:"timezone"`
	DSN         string `yaml:"dsn"`
	Query       string `yaml:"query" validate:"required_with=DSN"`
}

type OutputConfig struct {
	Path string  `yaml:"path" validate:"required"`
	DPI  float64 `yaml:"dpi" validate:"gte=0,lte=600"`
}

// PlotConfig mirrors heatmap.CalOptions and heatmap.YearOptions. Unset
// fields keep the plotting defaults.
type PlotConfig struct {
	Year int    `yaml:"year" validate:"gte=0"`
	How  string `yaml:"how" validate:"omitempty,oneof=none sum mean median min max count first last std"`

	Vmin      *float64 `yaml:"vmin"`
	Vmax      *float64 `yaml:"vmax"`
	Cmap      string   `yaml:"cmap"`
	FillColor string   `yaml:"fill_color"`
	LineWidth *float64 `yaml:"line_width" validate:"omitempty,gte=0"`
	LineColor string   `yaml:"line_color"`
	EdgeColor string   `yaml:"edge_color"`

	DayLabels        []string `yaml:"day_labels" validate:"omitempty,len=7"`
	DayTicks         Ticks    `yaml:"day_ticks"`
	MonthLabels      []string `yaml:"month_labels" validate:"omitempty,len=12"`
	MonthTicks       Ticks    `yaml:"month_ticks"`
	MonthLabelOffset int      `yaml:"month_label_offset" validate:"gte=0,lte=31"`
	DropZero         DropZero `yaml:"dropzero"`

	TextFormat string `yaml:"text_format"`
	TextFiller string `yaml:"text_filler"`
	TextColor  string `yaml:"text_color"`

	YearLabels     *bool   `yaml:"year_labels"`
	YearAscending  *bool   `yaml:"year_ascending"`
	YearLabelColor string  `yaml:"year_label_color"`
	YearLabelSize  float64 `yaml:"year_label_size" validate:"gte=0"`
	Colorbar       *bool   `yaml:"colorbar"`
	Width          float64 `yaml:"width" validate:"gte=0"`
	Height         float64 `yaml:"height" validate:"required_with=Width,gte=0"`
	Title          string  `yaml:"title"`
	TightLayout    *bool   `yaml:"tight_layout"`
}

// StorageConfig names the AWS resources rendered calendars are read from
// and published to.
type StorageConfig struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Table  string `yaml:"table"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr" validate:"required"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gte=0"`
	// MaxYears caps the distinct years one request may plot.
	MaxYears     int    `yaml:"max_years" validate:"gte=0"`
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, ", ")
	}
	return e.Message
}

var validate = validator.New()

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found. Please copy config.example.yaml to config.yaml", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse reads YAML configuration, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Input.DateColumn == "" {
		c.Input.DateColumn = "date"
	}
	if c.Input.ValueColumn == "" {
		c.Input.ValueColumn = "value"
	}
	if c.Output.Path == "" {
		c.Output.Path = "calplot.png"
	}
	if c.Output.DPI == 0 {
		c.Output.DPI = 100
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Server.MaxYears == 0 {
		c.Server.MaxYears = 100
	}
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag()))
	}
	return &ConfigError{Message: "invalid configuration", Details: details}
}

// LoadConfigFromEnv loads configuration from environment variables (fallback)
func LoadConfigFromEnv() *Config {
	cfg := Default()

	cfg.Input.Path = os.Getenv("CALPLOT_INPUT")
	cfg.Input.DSN = os.Getenv("CALPLOT_DSN")
	cfg.Input.Query = os.Getenv("CALPLOT_QUERY")
	if out := os.Getenv("CALPLOT_OUTPUT"); out != "" {
		cfg.Output.Path = out
	}

	cfg.Plot.How = os.Getenv("CALPLOT_HOW")
	cfg.Plot.Cmap = os.Getenv("CALPLOT_CMAP")
	cfg.Plot.Title = os.Getenv("CALPLOT_TITLE")
	if year, err := strconv.Atoi(os.Getenv("CALPLOT_YEAR")); err == nil {
		cfg.Plot.Year = year
	}

	cfg.Storage.Region = os.Getenv("AWS_REGION")
	cfg.Storage.Bucket = os.Getenv("CALPLOT_BUCKET")
	cfg.Storage.Prefix = os.Getenv("CALPLOT_PREFIX")
	cfg.Storage.Table = os.Getenv("CALPLOT_TABLE")

	if addr := os.Getenv("CALPLOT_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if path := os.Getenv("CALPLOT_CONFIG"); path != "" {
		return path
	}

	// Try current directory first
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	// Try executable directory
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		configPath := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return "config.yaml"
}
