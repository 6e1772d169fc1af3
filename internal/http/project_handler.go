package http

import (
	"encoding/json"
	"net/http"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/http/middleware"
	"github.com/Planora/planora/pkg/logger"
)

// ProjectHandler handles HTTP requests for project operations
type ProjectHandler struct {
	projectService domain.ProjectServiceInterface
	logger         logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService domain.ProjectServiceInterface, logger logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// RegisterRoutes registers project routes behind the auth middleware
func (h *ProjectHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.AuthMiddleware) {
	mux.HandleFunc("POST /api/project", auth.RequireAuth(h.handleCreate))
	mux.HandleFunc("PUT /api/project/update", auth.RequireAuth(h.handleUpdate))
	mux.HandleFunc("POST /api/project/{projectId}/add-member", auth.RequireAuth(h.handleAddMember))
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := r.PathValue("projectId")
	if projectID == "" {
		WriteJSONError(w, "projectId is required", http.StatusBadRequest)
		return
	}

	var req domain.AddProjectMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	member, err := h.projectService.AddMember(r.Context(), userID, projectID, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}
