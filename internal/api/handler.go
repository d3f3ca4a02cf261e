// Package api provides the HTTP handlers of the tracker API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/go-chi/chi/v5"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps a service error onto an HTTP status. Wrapped ErrNotFound
// becomes 404; everything else is a 500.
func ServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		Error(w, http.StatusNotFound, err.Error())
		return
	}
	Error(w, http.StatusInternalServerError, err.Error())
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeBody decodes a JSON request body into v. An empty body is not an
// error; v is left at its zero value.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
