package http

import (
	"encoding/json"
	"net/http"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/http/middleware"
	"github.com/Planora/planora/pkg/logger"
)

// WorkspaceHandler handles HTTP requests for workspace operations
type WorkspaceHandler struct {
	workspaceService domain.WorkspaceServiceInterface
	logger           logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService domain.WorkspaceServiceInterface, logger logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// RegisterRoutes registers workspace routes behind the auth middleware
func (h *WorkspaceHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.AuthMiddleware) {
	mux.HandleFunc("GET /api/workspace", auth.RequireAuth(h.handleList))
	mux.HandleFunc("POST /api/workspace/add-member", auth.RequireAuth(h.handleAddMember))
}

func (h *WorkspaceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	workspaces, err := h.workspaceService.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.WithField("user_id", userID).Error("Failed to list workspaces: " + err.Error())
		writeServiceError(w, err)
		return
	}

	if workspaces == nil {
		workspaces = []*domain.WorkspaceWithDetails{}
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (h *WorkspaceHandler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.AddWorkspaceMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	member, err := h.workspaceService.AddMember(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}
