package lambda

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/christophergentle/calplot/internal/render"
	"github.com/christophergentle/calplot/internal/series"
	"github.com/christophergentle/calplot/internal/source"
	"github.com/christophergentle/calplot/internal/storage"
)

const dateLayout = "2006-01-02"

// Event asks for a heatmap of one stored series. From and To are
// inclusive dates; To defaults to today and From to one year before To.
// Key defaults to "<series>/<to>.png".
type Event struct {
	Series string `json:"series"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Response represents the Lambda response
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	Key        string `json:"key,omitempty"`
	Published  bool   `json:"published"`
}

// SeriesReader reads stored daily values
type SeriesReader interface {
	Series(ctx context.Context, name string, from, to time.Time) (*series.Series, error)
}

// Publisher stores a rendered image and its manifest
type Publisher interface {
	Publish(ctx context.Context, key string, image []byte, manifest storage.Manifest) (*storage.Manifest, error)
}

// Handler renders stored series and publishes the images
type Handler struct {
	settings  *Settings
	reader    SeriesReader
	publisher Publisher
	service   *render.Service
	now       func() time.Time
}

// NewHandler creates a handler
func NewHandler(settings *Settings, reader SeriesReader, publisher Publisher, service *render.Service) *Handler {
	return &Handler{
		settings:  settings,
		reader:    reader,
		publisher: publisher,
		service:   service,
		now:       time.Now,
	}
}

// window resolves the event's date range and object key
func (h *Handler) window(event Event) (from, to time.Time, key string, err error) {
	to = h.now().UTC().Truncate(24 * time.Hour)
	if event.To != "" {
		if to, err = time.Parse(dateLayout, event.To); err != nil {
			return from, to, "", fmt.Errorf("invalid to date %q", event.To)
		}
	}
	from = to.AddDate(-1, 0, 1)
	if event.From != "" {
		if from, err = time.Parse(dateLayout, event.From); err != nil {
			return from, to, "", fmt.Errorf("invalid from date %q", event.From)
		}
	}
	if from.After(to) {
		return from, to, "", fmt.Errorf("from %s is after to %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	key = event.Key
	if key == "" {
		key = fmt.Sprintf("%s/%s.png", event.Series, to.Format(dateLayout))
	}
	return from, to, key, nil
}

// HandleRequest is the main Lambda handler
func (h *Handler) HandleRequest(ctx context.Context, event Event) (Response, error) {
	log.Printf("Calplot received event: %+v", event)

	if event.Series == "" {
		return Response{StatusCode: http.StatusBadRequest, Body: "Missing series name"}, nil
	}
	from, to, key, err := h.window(event)
	if err != nil {
		return Response{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
	}

	data, err := h.reader.Series(ctx, event.Series, from, to)
	if errors.Is(err, source.ErrNoRows) {
		log.Printf("No values stored for %s between %s and %s", event.Series, from.Format(dateLayout), to.Format(dateLayout))
		return Response{StatusCode: http.StatusNotFound, Body: "No data for " + event.Series}, nil
	}
	if err != nil {
		log.Printf("Failed to read series %s: %v", event.Series, err)
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       "Failed to read series: " + err.Error(),
		}, err
	}
	log.Printf("Read %d daily values for %s", data.Len(), event.Series)

	result, err := h.service.Render(ctx, data, render.SourceDynamoDB, h.settings.Plot, h.settings.Output.DPI)
	if err != nil {
		log.Printf("Failed to render %s: %v", event.Series, err)
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       "Failed to render heatmap: " + err.Error(),
		}, err
	}

	if h.settings.DryRun {
		log.Printf("Dry run mode enabled, skipping publish of %s", key)
		return Response{
			StatusCode: http.StatusOK,
			Body:       "Dry run mode - publish skipped",
			Key:        key,
		}, nil
	}

	manifest := storage.NewManifest(result.PNG, result.Years, result.Width, result.Height)
	manifest.Series = event.Series
	published, err := h.publisher.Publish(ctx, key, result.PNG, manifest)
	if err != nil {
		log.Printf("Failed to publish %s: %v", key, err)
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       "Failed to publish heatmap: " + err.Error(),
		}, err
	}

	log.Printf("Successfully published %s heatmap covering %d year(s)", event.Series, len(result.Years))
	return Response{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf("Published %d bytes", len(result.PNG)),
		Key:        published.Key,
		Published:  true,
	}, nil
}
