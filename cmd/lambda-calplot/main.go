package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/christophergentle/calplot/internal/lambda"
	"github.com/christophergentle/calplot/internal/metrics"
	"github.com/christophergentle/calplot/internal/render"
	"github.com/christophergentle/calplot/internal/source"
	"github.com/christophergentle/calplot/internal/storage"
)

func main() {
	ctx := context.Background()

	loader, err := lambda.NewSSMConfigLoader(ctx)
	if err != nil {
		log.Fatalf("Failed to create SSM config loader: %v", err)
	}
	settings, err := loader.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := source.NewDynamoStoreFromConfig(ctx, settings.Storage.Table)
	if err != nil {
		log.Fatalf("Failed to create daily value store: %v", err)
	}
	publisher, err := storage.NewPublisherFromConfig(ctx, settings.Storage.Region, settings.Storage.Bucket, settings.Storage.Prefix)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}

	handler := lambda.NewHandler(settings, store, publisher, render.NewService(metrics.NewCollector("calplot")))
	awslambda.Start(handler.HandleRequest)
}
