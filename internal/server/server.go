// Package server exposes the heatmap renderer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/metrics"
	rendersvc "github.com/christophergentle/calplot/internal/render"
	"github.com/christophergentle/calplot/internal/series"
)

// Server serves POST /render, GET /healthz and GET /metrics
type Server struct {
	cfg     *config.Config
	service *rendersvc.Service
	metrics *metrics.Collector
	limiter *rate.Limiter
	started time.Time
}

// New creates a server. Requests beyond rps (with the given burst) are
// rejected; rps <= 0 disables limiting.
func New(cfg *config.Config, m *metrics.Collector, rps float64, burst int) *Server {
	if m == nil {
		m = metrics.NewCollector("calplot")
	}
	s := &Server{
		cfg:     cfg,
		service: rendersvc.NewService(m),
		metrics: m,
		started: time.Now(),
	}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics.Handler())
	r.With(s.rateLimit).Post("/render", s.render)
	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", s.cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// render reads a CSV body and answers with the PNG heatmap
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	plot, err := plotFromQuery(s.cfg.Plot, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body := r.Body
	if s.cfg.Server.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	}
	data, err := rendersvc.ReadCSV(body, s.cfg.Input)
	if err != nil {
		if apiErr := toAPIError(err); apiErr.StatusCode == http.StatusInternalServerError {
			err = badRequest("invalid CSV body", err.Error())
		}
		s.fail(w, r, err)
		return
	}
	if years := len(data.Years()); s.cfg.Server.MaxYears > 0 && years > s.cfg.Server.MaxYears && plot.Year == 0 {
		s.fail(w, r, &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  "TOO_MANY_YEARS",
			Message:    fmt.Sprintf("data spans %d years, at most %d can be plotted", years, s.cfg.Server.MaxYears),
		})
		return
	}

	result, err := s.service.Render(r.Context(), data, "http", plot, s.cfg.Output.DPI)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PNG)))
	w.Header().Set("X-Render-Id", uuid.New().String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PNG); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// plotFromQuery overrides the configured plot settings with query
// parameters how, cmap, year, title and colorbar.
func plotFromQuery(base config.PlotConfig, r *http.Request) (config.PlotConfig, error) {
	plot := base
	q := r.URL.Query()

	if how := q.Get("how"); how != "" {
		if _, err := series.ParseAgg(how); err != nil {
			return plot, badRequest("invalid how", err.Error())
		}
		plot.How = how
	}
	if cmap := q.Get("cmap"); cmap != "" {
		plot.Cmap = cmap
	}
	if year := q.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y < 0 {
			return plot, badRequest("invalid year", fmt.Sprintf("%q is not a year", year))
		}
		plot.Year = y
	}
	if title := q.Get("title"); title != "" {
		plot.Title = title
	}
	if cb := q.Get("colorbar"); cb != "" {
		show, err := strconv.ParseBool(cb)
		if err != nil {
			return plot, badRequest("invalid colorbar", err.Error())
		}
		plot.Colorbar = &show
	}
	return plot, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Printf("Render request %s failed: %v", middleware.GetReqID(r.Context()), err)
	}
	if rerr := render.Render(w, r, apiErr); rerr != nil {
		log.Printf("Failed to render error response: %v", rerr)
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.fail(w, r, &APIError{
				StatusCode: http.StatusTooManyRequests,
				ErrorCode:  "RATE_LIMITED",
				Message:    "too many render requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := s.metrics.NewTimer(s.metrics.APIRequestDuration.WithLabelValues(r.URL.Path))
		next.ServeHTTP(ww, r)
		timer.ObserveDuration()

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(status))
	})
}
