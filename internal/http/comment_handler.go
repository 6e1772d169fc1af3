package http

import (
	"encoding/json"
	"net/http"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/http/middleware"
	"github.com/Planora/planora/pkg/logger"
)

// CommentHandler handles HTTP requests for comment operations
type CommentHandler struct {
	commentService domain.CommentServiceInterface
	logger         logger.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService domain.CommentServiceInterface, logger logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// RegisterRoutes registers comment routes behind the auth middleware
func (h *CommentHandler) RegisterRoutes(mux *http.ServeMux, auth *middleware.AuthMiddleware) {
	mux.HandleFunc("POST /api/comment", auth.RequireAuth(h.handleCreate))
	mux.HandleFunc("GET /api/comment/{taskId}", auth.RequireAuth(h.handleList))
}

func (h *CommentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	taskID := r.PathValue("taskId")
	if taskID == "" {
		WriteJSONError(w, "taskId is required", http.StatusBadRequest)
		return
	}

	comments, err := h.commentService.ListByTask(r.Context(), userID, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if comments == nil {
		comments = []*domain.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
