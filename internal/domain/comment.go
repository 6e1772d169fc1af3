package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_comment_repository.go -package mocks github.com/Planora/planora/internal/domain CommentRepository
//go:generate mockgen -destination mocks/mock_comment_service.go -package mocks github.com/Planora/planora/internal/domain CommentServiceInterface

// Comment is authored by a member of the task's project
type Comment struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// CreateCommentRequest is the payload for POST /api/comment
type CreateCommentRequest struct {
	Content string `json:"content"`
	TaskID  string `json:"taskId"`
}

// Validate checks required fields
func (r *CreateCommentRequest) Validate() error {
	if r.Content == "" {
		return NewValidationError("content is required")
	}
	if r.TaskID == "" {
		return NewValidationError("taskId is required")
	}
	return nil
}

type CommentRepository interface {
	// Create inserts a comment
	Create(ctx context.Context, comment *Comment) error

	// ListByTask returns a task's comments with authors, oldest first
	ListByTask(ctx context.Context, taskID string) ([]*Comment, error)
}

// CommentServiceInterface defines comment operations exposed to handlers
type CommentServiceInterface interface {
	// Create adds a comment; requester must be a member of the task's project
	Create(ctx context.Context, requesterID string, req *CreateCommentRequest) (*Comment, error)

	// ListByTask returns a task's comments ordered by creation time;
	// requester must be a member of the task's project
	ListByTask(ctx context.Context, requesterID, taskID string) ([]*Comment, error)
}
