package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/metrics"
	"github.com/christophergentle/calplot/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default: environment only)")
		addr       = flag.String("addr", "", "Listen address (overrides server.addr)")
		rps        = flag.Float64("rps", 5, "Render requests per second, 0 for unlimited")
		burst      = flag.Int("burst", 10, "Render request burst")
	)
	flag.Parse()

	cfg := config.LoadConfigFromEnv()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, metrics.NewCollector("calplot"), *rps, *burst)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
