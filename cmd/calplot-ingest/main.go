package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/lambda"
	"github.com/christophergentle/calplot/internal/render"
	"github.com/christophergentle/calplot/internal/series"
	"github.com/christophergentle/calplot/internal/source"
)

func main() {
	var (
		table     = flag.String("table", "calplot-daily", "DynamoDB table holding daily values")
		name      = flag.String("series", "", "Series name to store values under")
		input     = flag.String("input", "", "CSV or XLSX file to ingest")
		sheet     = flag.String("sheet", "", "XLSX sheet name (default: first sheet)")
		how       = flag.String("how", "sum", "Daily aggregation of the input rows")
		retention = flag.Int("retention-days", 0, "Expire stored values after this many days, 0 keeps them")
		list      = flag.Bool("list", false, "List stored values of the series instead of ingesting")
		days      = flag.Int("days", 365, "Number of days to list")
		invoke    = flag.String("invoke", "", "Render function to invoke after ingesting, e.g. calplot-render")
	)
	flag.Parse()

	if *name == "" || (*input == "" && !*list) {
		fmt.Println("Usage:")
		fmt.Println("  Ingest a file:   go run cmd/calplot-ingest/main.go -series commits -input commits.csv")
		fmt.Println("  List values:     go run cmd/calplot-ingest/main.go -series commits -list [-days 30]")
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := source.NewDynamoStoreFromConfig(ctx, *table)
	if err != nil {
		log.Fatalf("Failed to create daily value store: %v", err)
	}
	store.Retention = time.Duration(*retention) * 24 * time.Hour

	if *list {
		listValues(ctx, store, *name, *days)
		return
	}

	agg, err := series.ParseAgg(*how)
	if err != nil {
		log.Fatalf("Invalid -how: %v", err)
	}

	in := config.Default().Input
	in.Path = *input
	in.Sheet = *sheet
	data, kind, err := render.Load(ctx, in)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *input, err)
	}

	byDay := data.AsDaily()
	if agg != series.AggNone {
		if byDay, err = data.Resample(agg); err != nil {
			log.Fatalf("Failed to resample: %v", err)
		}
	}

	stored := 0
	for i, day := range byDay.Dates() {
		v := byDay.Values()[i]
		if math.IsNaN(v) {
			continue
		}
		if err := store.Put(ctx, *name, day, v); err != nil {
			log.Fatalf("Failed to store %s: %v", day.Format("2006-01-02"), err)
		}
		stored++
	}
	log.Printf("Stored %d daily values of %s from %s into %s", stored, *name, kind, *table)

	if *invoke == "" {
		return
	}
	invoker, err := lambda.NewInvokerFromConfig(ctx, *invoke)
	if err != nil {
		log.Fatalf("Failed to create invoker: %v", err)
	}
	resp, err := invoker.Render(ctx, lambda.Event{Series: *name})
	if err != nil {
		log.Fatalf("Failed to render %s: %v", *name, err)
	}
	fmt.Printf("Render returned %d: %s\n", resp.StatusCode, resp.Body)
}

func listValues(ctx context.Context, store *source.DynamoStore, name string, days int) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	data, err := store.Series(ctx, name, from, to)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", name, err)
	}

	fmt.Printf("Found %d value(s) for %s:\n\n", data.Len(), name)
	for _, p := range data.Points() {
		fmt.Printf("  %s  %g\n", p.Time.Format("2006-01-02"), p.Value)
	}
}
