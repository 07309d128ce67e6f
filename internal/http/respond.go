package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/csvimport"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses. Unrecognized errors
// become a generic 500 so internals never leak to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, core.ErrSystemCategory):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, csvimport.ErrFileTooLarge),
		errors.Is(err, csvimport.ErrTooManyRows):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrUnsupportedFormat),
		errors.Is(err, core.ErrMappingIncomplete),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
