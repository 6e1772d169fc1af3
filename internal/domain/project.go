package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_project_repository.go -package mocks github.com/Planora/planora/internal/domain ProjectRepository
//go:generate mockgen -destination mocks/mock_project_service.go -package mocks github.com/Planora/planora/internal/domain ProjectServiceInterface

// Project belongs to a workspace and groups tasks and members.
// TeamLead is nil when the creation request named an unknown email.
type Project struct {
	ID          string     `json:"id" db:"id"`
	WorkspaceID string     `json:"workspace_id" db:"workspace_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Status      string     `json:"status,omitempty" db:"status"`
	Priority    string     `json:"priority,omitempty" db:"priority"`
	Progress    int        `json:"progress" db:"progress"`
	TeamLead    *string    `json:"team_lead,omitempty" db:"team_lead"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Joined data, populated by list queries
	Members []*ProjectMember `json:"members,omitempty" db:"-"`
	Tasks   []*Task          `json:"tasks,omitempty" db:"-"`
}

// ProjectMember links a user to a project. The user must belong to the
// parent workspace.
type ProjectMember struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// CreateProjectRequest is the payload for POST /api/project
type CreateProjectRequest struct {
	WorkspaceID string   `json:"workspaceId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Progress    int      `json:"progress,omitempty"`
	TeamLead    string   `json:"team_lead,omitempty"` // email, resolved to a user id
	TeamMembers []string `json:"team_members,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
}

// Validate checks required fields and parses the date range
func (r *CreateProjectRequest) Validate() (startDate, endDate *time.Time, err error) {
	if r.WorkspaceID == "" {
		return nil, nil, NewValidationError("workspaceId is required")
	}
	if r.Name == "" {
		return nil, nil, NewValidationError("name is required")
	}
	if r.TeamLead != "" && !govalidator.IsEmail(r.TeamLead) {
		return nil, nil, NewValidationError("team_lead must be an email address")
	}

	if startDate, err = parseOptionalDate(r.StartDate, "start_date"); err != nil {
		return nil, nil, err
	}
	if endDate, err = parseOptionalDate(r.EndDate, "end_date"); err != nil {
		return nil, nil, err
	}
	return startDate, endDate, nil
}

// UpdateProjectRequest is the payload for PUT /api/project/update
type UpdateProjectRequest struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
	TeamLead    string `json:"team_lead,omitempty"` // email
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// Validate checks required fields and parses the date range
func (r *UpdateProjectRequest) Validate() (startDate, endDate *time.Time, err error) {
	if r.ID == "" {
		return nil, nil, NewValidationError("id is required")
	}
	if r.WorkspaceID == "" {
		return nil, nil, NewValidationError("workspaceId is required")
	}
	if r.TeamLead != "" && !govalidator.IsEmail(r.TeamLead) {
		return nil, nil, NewValidationError("team_lead must be an email address")
	}

	if startDate, err = parseOptionalDate(r.StartDate, "start_date"); err != nil {
		return nil, nil, err
	}
	if endDate, err = parseOptionalDate(r.EndDate, "end_date"); err != nil {
		return nil, nil, err
	}
	return startDate, endDate, nil
}

// AddProjectMemberRequest is the payload for POST /api/project/{projectId}/add-member
type AddProjectMemberRequest struct {
	Email string `json:"email"`
}

// Validate checks the email field
func (r *AddProjectMemberRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return NewValidationError("invalid email address")
	}
	return nil
}

// parseOptionalDate parses an RFC3339 timestamp or a plain date
func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, NewValidationError(field + " must be an RFC3339 timestamp or YYYY-MM-DD date")
}

type ProjectRepository interface {
	// Create inserts a project
	Create(ctx context.Context, project *Project) error

	// GetByID retrieves a project without joined data
	GetByID(ctx context.Context, id string) (*Project, error)

	// GetWithMembers retrieves a project with its members and their users
	GetWithMembers(ctx context.Context, id string) (*Project, error)

	// Update writes the mutable project fields
	Update(ctx context.Context, project *Project) error

	// AddMember inserts a membership row; returns ConflictError on duplicates
	AddMember(ctx context.Context, member *ProjectMember) error

	// AddMembers bulk-inserts membership rows, skipping duplicates
	AddMembers(ctx context.Context, projectID string, userIDs []string) error

	// IsLead reports whether the user is the project's team lead
	IsLead(ctx context.Context, userID, projectID string) (bool, error)

	// IsMember reports whether the user is a member of the project
	IsMember(ctx context.Context, userID, projectID string) (bool, error)

	// ListByWorkspace returns a workspace's projects with members and tasks
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Project, error)
}

// ProjectServiceInterface defines project operations exposed to handlers
type ProjectServiceInterface interface {
	// Create creates a project in a workspace; requester must be workspace ADMIN
	Create(ctx context.Context, requesterID string, req *CreateProjectRequest) (*Project, error)

	// Update updates a project; requester must be workspace ADMIN or team lead
	Update(ctx context.Context, requesterID string, req *UpdateProjectRequest) (*Project, error)

	// AddMember adds a user by email; requester must be the team lead
	AddMember(ctx context.Context, requesterID, projectID, email string) (*ProjectMember, error)
}
