package http

import (
	"net/http"

	"github.com/Planora/planora/pkg/logger"
)

// RootHandler serves the API status endpoint
type RootHandler struct {
	version     string
	environment string
	logger      logger.Logger
}

// NewRootHandler creates a new root handler
func NewRootHandler(version, environment string, logger logger.Logger) *RootHandler {
	return &RootHandler{
		version:     version,
		environment: environment,
		logger:      logger,
	}
}

// RegisterRoutes registers the status endpoint
func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/", h.handleStatus)
}

func (h *RootHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     h.version,
		"environment": h.environment,
	})
}
