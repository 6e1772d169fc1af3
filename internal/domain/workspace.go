package domain

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_workspace_repository.go -package mocks github.com/Planora/planora/internal/domain WorkspaceRepository
//go:generate mockgen -destination mocks/mock_workspace_service.go -package mocks github.com/Planora/planora/internal/domain WorkspaceServiceInterface

// Role is the workspace-scoped membership role
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole validates and normalizes a role string
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", NewValidationError("invalid role: " + s)
	}
}

// Workspace mirrors an identity-provider organization. Rows are only
// written by the identity sync, never by domain API calls.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ImageURL  string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkspaceMember links a user to a workspace with a role.
// One membership row per (user, workspace).
type WorkspaceMember struct {
	UserID      string    `json:"user_id" db:"user_id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Joined data, populated by list queries
	User *User `json:"user,omitempty" db:"-"`
}

// WorkspaceWithDetails is the nested listing shape returned by GET /api/workspace
type WorkspaceWithDetails struct {
	Workspace
	Owner    *User              `json:"owner,omitempty"`
	Members  []*WorkspaceMember `json:"members"`
	Projects []*Project         `json:"projects"`
}

// AddWorkspaceMemberRequest is the payload for POST /api/workspace/add-member
type AddWorkspaceMemberRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	WorkspaceID string `json:"workspaceId"`
	Message     string `json:"message,omitempty"`
}

// Validate checks the request and returns the normalized role
func (r *AddWorkspaceMemberRequest) Validate() (Role, error) {
	if r.WorkspaceID == "" {
		return "", NewValidationError("workspaceId is required")
	}
	if r.Email == "" {
		return "", NewValidationError("email is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return "", NewValidationError("invalid email address")
	}
	if r.Role == "" {
		return "", NewValidationError("role is required")
	}
	return ParseRole(r.Role)
}

type WorkspaceRepository interface {
	// CreateWithAdmin inserts the workspace and its creator's ADMIN
	// membership in a single transaction
	CreateWithAdmin(ctx context.Context, workspace *Workspace) error

	// Exists reports whether a workspace with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)

	// GetByID retrieves a workspace
	GetByID(ctx context.Context, id string) (*Workspace, error)

	// Update updates name, slug and image; returns ErrNotFound if absent
	Update(ctx context.Context, workspace *Workspace) error

	// Delete removes a workspace; members and projects cascade
	Delete(ctx context.Context, id string) error

	// AddMember inserts a membership row; returns ConflictError on duplicates
	AddMember(ctx context.Context, member *WorkspaceMember) error

	// GetMember returns the membership row for (user, workspace)
	GetMember(ctx context.Context, userID, workspaceID string) (*WorkspaceMember, error)

	// IsAdmin reports whether the user holds an ADMIN membership
	IsAdmin(ctx context.Context, userID, workspaceID string) (bool, error)

	// ListForUser returns the workspaces the user is a member of
	ListForUser(ctx context.Context, userID string) ([]*Workspace, error)

	// ListMembers returns all memberships of a workspace with joined users
	ListMembers(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error)
}

// WorkspaceServiceInterface defines workspace operations exposed to handlers
type WorkspaceServiceInterface interface {
	// ListForUser returns the caller's workspaces with nested members,
	// projects, tasks and owner
	ListForUser(ctx context.Context, userID string) ([]*WorkspaceWithDetails, error)

	// AddMember adds a user (looked up by email) to a workspace; admin-gated
	AddMember(ctx context.Context, requesterID string, req *AddWorkspaceMemberRequest) (*WorkspaceMember, error)
}
