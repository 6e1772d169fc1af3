package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Planora/planora/internal/domain"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps domain error types onto HTTP status codes.
// Anything untyped is an internal error and keeps its details out of
// the response body.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var permissionErr *domain.PermissionError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		WriteJSONError(w, validationErr.Message, http.StatusBadRequest)
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &permissionErr):
		WriteJSONError(w, permissionErr.Message, http.StatusForbidden)
	case errors.As(err, &conflictErr):
		WriteJSONError(w, conflictErr.Message, http.StatusConflict)
	default:
		WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
