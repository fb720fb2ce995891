package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/smartextract/internal/archive"
	"github.com/dgallion1/smartextract/internal/chart"
	"github.com/dgallion1/smartextract/internal/extract"
	"github.com/dgallion1/smartextract/internal/llm"
	"github.com/dgallion1/smartextract/internal/qa"
	"github.com/dgallion1/smartextract/internal/session"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var xerr *extract.Error
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoRecord), errors.Is(err, qa.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNoContent), errors.Is(err, session.ErrNoOrganized):
		return http.StatusConflict
	case errors.Is(err, qa.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.As(err, &xerr), errors.Is(err, chart.ErrLengthMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, archive.ErrDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr), errors.Is(err, llm.ErrEmptyCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a JSON error body with its mapped status.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	body := map[string]string{"error": err.Error()}

	var xerr *extract.Error
	switch {
	case errors.As(err, &xerr):
		body["error"] = "failed to extract content from the document"
		body["structured_error"] = xerr.Structured.Error()
		body["fallback_error"] = xerr.Fallback.Error()
	case errors.Is(err, qa.ErrEmptyQuestion):
		body["warning"] = "Please enter a question."
	}

	writeJSON(w, code, body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
