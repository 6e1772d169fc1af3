package http

import (
	"encoding/json"
	"net/http"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/http/middleware"
	"github.com/Planora/planora/pkg/logger"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	taskService domain.TaskServiceInterface
	logger      logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService domain.TaskServiceInterface, logger logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// RegisterRoutes registers task routes behind the auth middleware
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.AuthMiddleware) {
	mux.HandleFunc("POST /api/task", auth.RequireAuth(h.handleCreate))
	mux.HandleFunc("PUT /api/task/{id}", auth.RequireAuth(h.handleUpdate))
	mux.HandleFunc("POST /api/task/delete", auth.RequireAuth(h.handleDelete))
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The Origin header becomes the deep link in notification emails
	task, err := h.taskService.Create(r.Context(), userID, &req, r.Header.Get("Origin"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	taskID := r.PathValue("id")
	if taskID == "" {
		WriteJSONError(w, "task id is required", http.StatusBadRequest)
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.DeleteTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.taskService.DeleteBatch(r.Context(), userID, req.TaskIDs); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "deleted"})
}
