package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/render"
	"github.com/christophergentle/calplot/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default: $CALPLOT_CONFIG or ./config.yaml)")
		input      = flag.String("input", "", "CSV or XLSX file to read")
		sheet      = flag.String("sheet", "", "XLSX sheet name (default: first sheet)")
		dsn        = flag.String("dsn", "", "PostgreSQL connection string")
		query      = flag.String("query", "", "SQL query returning day and value columns")
		out        = flag.String("out", "", "PNG file to write")
		year       = flag.Int("year", 0, "Plot a single year instead of every year")
		how        = flag.String("how", "", "Daily aggregation: sum, mean, median, min, max, count, first, last, std or none")
		cmap       = flag.String("cmap", "", "Colormap name")
		title      = flag.String("title", "", "Figure title")
		publish    = flag.String("publish", "", "S3 key to publish the image under (requires storage.bucket)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *input != "" {
		cfg.Input.Path = *input
	}
	if *sheet != "" {
		cfg.Input.Sheet = *sheet
	}
	if *dsn != "" {
		cfg.Input.DSN = *dsn
	}
	if *query != "" {
		cfg.Input.Query = *query
	}
	if *out != "" {
		cfg.Output.Path = *out
	}
	if *year > 0 {
		cfg.Plot.Year = *year
	}
	if *how != "" {
		cfg.Plot.How = *how
	}
	if *cmap != "" {
		cfg.Plot.Cmap = *cmap
	}
	if *title != "" {
		cfg.Plot.Title = *title
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := render.NewService(nil).RenderConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to render heatmap: %v", err)
	}

	if err := os.WriteFile(cfg.Output.Path, result.PNG, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", cfg.Output.Path, err)
	}
	fmt.Printf("Wrote %s (%dx%d, years %v)\n", cfg.Output.Path, result.Width, result.Height, result.Years)

	if *publish == "" {
		return
	}
	publisher, err := storage.NewPublisherFromConfig(ctx, cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.Prefix)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}
	manifest, err := publisher.Publish(ctx, *publish, result.PNG, storage.NewManifest(result.PNG, result.Years, result.Width, result.Height))
	if err != nil {
		log.Fatalf("Failed to publish heatmap: %v", err)
	}
	fmt.Printf("Published s3://%s/%s\n", cfg.Storage.Bucket, manifest.Key)
}

// loadConfig reads the config file when there is one and falls back to
// the environment otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("No config file at %s, using environment", path)
			return config.LoadConfigFromEnv(), nil
		}
	}
	return config.LoadConfig(path)
}
