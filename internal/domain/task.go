package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_task_repository.go -package mocks github.com/Planora/planora/internal/domain TaskRepository
//go:generate mockgen -destination mocks/mock_task_service.go -package mocks github.com/Planora/planora/internal/domain TaskServiceInterface

// TaskStatusDone is the terminal task status; reaching it before the due
// date suppresses the reminder email.
const TaskStatusDone = "DONE"

// Task belongs to a project. AssigneeID, when set, must be a project member.
type Task struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Type        string    `json:"type,omitempty" db:"type"`
	Status      string    `json:"status,omitempty" db:"status"`
	Priority    string    `json:"priority,omitempty" db:"priority"`
	AssigneeID  *string   `json:"assignee_id,omitempty" db:"assignee_id"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined data, populated by list queries
	Assignee *User      `json:"assignee,omitempty" db:"-"`
	Comments []*Comment `json:"comments,omitempty" db:"-"`
}

// CreateTaskRequest is the payload for POST /api/task
type CreateTaskRequest struct {
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssigneeID  string `json:"assigneeId,omitempty"`
	DueDate     string `json:"due_date"`
}

// Validate checks required fields and parses the due date
func (r *CreateTaskRequest) Validate() (time.Time, error) {
	if r.ProjectID == "" {
		return time.Time{}, NewValidationError("projectId is required")
	}
	if r.Title == "" {
		return time.Time{}, NewValidationError("title is required")
	}
	if r.DueDate == "" {
		return time.Time{}, NewValidationError("due_date is required")
	}
	dueDate, err := parseOptionalDate(r.DueDate, "due_date")
	if err != nil {
		return time.Time{}, err
	}
	return *dueDate, nil
}

// UpdateTaskRequest is the payload for PUT /api/task/{id}.
// Nil pointers leave the current value untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	AssigneeID  *string `json:"assigneeId,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Apply merges the request into the task and parses the due date if present
func (r *UpdateTaskRequest) Apply(task *Task) error {
	if r.Title != nil {
		task.Title = *r.Title
	}
	if r.Description != nil {
		task.Description = *r.Description
	}
	if r.Type != nil {
		task.Type = *r.Type
	}
	if r.Status != nil {
		task.Status = *r.Status
	}
	if r.Priority != nil {
		task.Priority = *r.Priority
	}
	if r.AssigneeID != nil {
		if *r.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			task.AssigneeID = r.AssigneeID
		}
	}
	if r.DueDate != nil {
		dueDate, err := parseOptionalDate(*r.DueDate, "due_date")
		if err != nil {
			return err
		}
		task.DueDate = *dueDate
	}
	return nil
}

// DeleteTasksRequest is the payload for POST /api/task/delete
type DeleteTasksRequest struct {
	TaskIDs []string `json:"taskIds"`
}

// Validate checks that at least one task id was given
func (r *DeleteTasksRequest) Validate() error {
	if len(r.TaskIDs) == 0 {
		return NewValidationError("taskIds is required")
	}
	return nil
}

type TaskRepository interface {
	// Create inserts a task
	Create(ctx context.Context, task *Task) error

	// GetByID retrieves a task
	GetByID(ctx context.Context, id string) (*Task, error)

	// GetWithAssignee retrieves a task with its assignee joined
	GetWithAssignee(ctx context.Context, id string) (*Task, error)

	// Update writes the mutable task fields
	Update(ctx context.Context, task *Task) error

	// DeleteBatch removes the given tasks, returning how many existed
	DeleteBatch(ctx context.Context, ids []string) (int64, error)

	// ListByProject returns a project's tasks with assignees joined
	ListByProject(ctx context.Context, projectID string) ([]*Task, error)
}

// TaskServiceInterface defines task operations exposed to handlers
type TaskServiceInterface interface {
	// Create creates a task; requester must be the project's team lead and
	// the assignee, if given, must be a project member. Publishes the
	// task.assigned event with the request origin.
	Create(ctx context.Context, requesterID string, req *CreateTaskRequest, origin string) (*Task, error)

	// Update updates a task; requester must be the team lead of its project
	Update(ctx context.Context, requesterID, taskID string, req *UpdateTaskRequest) (*Task, error)

	// DeleteBatch removes tasks; requester must be the team lead of the
	// first task's project (all tasks are expected to share a project)
	DeleteBatch(ctx context.Context, requesterID string, taskIDs []string) error
}
