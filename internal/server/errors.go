package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/christophergentle/calplot/internal/config"
	"github.com/christophergentle/calplot/internal/heatmap"
	"github.com/christophergentle/calplot/internal/source"
)

// APIError is the JSON body of a failed request
type APIError struct {
	StatusCode int      `json:"status_code"`
	ErrorCode  string   `json:"error_code"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func badRequest(message string, details ...string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: "INVALID_REQUEST", Message: message, Details: details}
}

// toAPIError maps render failures to HTTP errors
func toAPIError(err error) *APIError {
	var apiErr *APIError
	var cfgErr *config.ConfigError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &cfgErr):
		return badRequest(cfgErr.Message, cfgErr.Details...)
	case errors.As(err, &maxErr):
		return &APIError{StatusCode: http.StatusRequestEntityTooLarge, ErrorCode: "BODY_TOO_LARGE", Message: err.Error()}
	case errors.Is(err, source.ErrNoRows), errors.Is(err, heatmap.ErrNoData):
		return &APIError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: "NO_DATA", Message: err.Error()}
	case errors.Is(err, heatmap.ErrFigureTooLarge):
		return &APIError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: "FIGURE_TOO_LARGE", Message: err.Error()}
	default:
		return &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "RENDER_FAILED", Message: err.Error()}
	}
}
