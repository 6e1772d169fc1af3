package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Planora/planora/internal/domain"
)

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository instance
func NewWorkspaceRepository(db *sql.DB) domain.WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// CreateWithAdmin inserts the workspace and its creator's ADMIN membership
// in a single transaction. Both rows land or neither does.
func (r *WorkspaceRepository) CreateWithAdmin(ctx context.Context, workspace *domain.Workspace) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	workspace.CreatedAt = now
	workspace.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, slug, owner_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		workspace.ID,
		workspace.Name,
		workspace.Slug,
		workspace.OwnerID,
		workspace.ImageURL,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("workspace already exists: " + workspace.ID)
		}
		return fmt.Errorf("failed to insert workspace: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspace_members (user_id, workspace_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		workspace.OwnerID,
		workspace.ID,
		domain.RoleAdmin,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Exists reports whether a workspace with the given ID exists
func (r *WorkspaceRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM workspaces WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check workspace existence: %w", err)
	}
	return exists, nil
}

// GetByID retrieves a workspace
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var workspace domain.Workspace
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, owner_id, image_url, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Slug,
		&workspace.OwnerID,
		&workspace.ImageURL,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "workspace", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return &workspace, nil
}

// Update updates name, slug and image
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	workspace.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE workspaces
		SET name = $2, slug = $3, image_url = $4, updated_at = $5
		WHERE id = $1
	`,
		workspace.ID,
		workspace.Name,
		workspace.Slug,
		workspace.ImageURL,
		workspace.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "workspace", ID: workspace.ID}
	}

	return nil
}

// Delete removes a workspace; members and projects cascade
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "workspace", ID: id}
	}

	return nil
}

// AddMember inserts a membership row
func (r *WorkspaceRepository) AddMember(ctx context.Context, member *domain.WorkspaceMember) error {
	member.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspace_members (user_id, workspace_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		member.UserID,
		member.WorkspaceID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("user is already a member of this workspace")
		}
		return fmt.Errorf("failed to insert workspace member: %w", err)
	}

	return nil
}

// GetMember returns the membership row for (user, workspace)
func (r *WorkspaceRepository) GetMember(ctx context.Context, userID, workspaceID string) (*domain.WorkspaceMember, error) {
	var member domain.WorkspaceMember
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, workspace_id, role, created_at
		FROM workspace_members
		WHERE user_id = $1 AND workspace_id = $2
	`, userID, workspaceID).Scan(
		&member.UserID,
		&member.WorkspaceID,
		&member.Role,
		&member.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "workspace member", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}

	return &member, nil
}

// IsAdmin reports whether the user holds an ADMIN membership
func (r *WorkspaceRepository) IsAdmin(ctx context.Context, userID, workspaceID string) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM workspace_members
			WHERE user_id = $1 AND workspace_id = $2 AND role = $3
		)
	`, userID, workspaceID, domain.RoleAdmin).Scan(&isAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check admin membership: %w", err)
	}
	return isAdmin, nil
}

// ListForUser returns the workspaces the user is a member of
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	query, args, err := sq.Select("w.id", "w.name", "w.slug", "w.owner_id", "w.image_url", "w.created_at", "w.updated_at").
		From("workspaces w").
		Join("workspace_members m ON m.workspace_id = w.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("w.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		var workspace domain.Workspace
		if err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Slug,
			&workspace.OwnerID,
			&workspace.ImageURL,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, &workspace)
	}

	return workspaces, rows.Err()
}

// ListMembers returns all memberships of a workspace with joined users
func (r *WorkspaceRepository) ListMembers(ctx context.Context, workspaceID string) ([]*domain.WorkspaceMember, error) {
	query, args, err := sq.Select(
		"m.user_id", "m.workspace_id", "m.role", "m.created_at",
		"u.id", "u.email", "u.name", "u.image_url", "u.created_at", "u.updated_at").
		From("workspace_members m").
		Join("users u ON u.id = m.user_id").
		Where(sq.Eq{"m.workspace_id": workspaceID}).
		OrderBy("m.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	defer rows.Close()

	var members []*domain.WorkspaceMember
	for rows.Next() {
		var member domain.WorkspaceMember
		var user domain.User
		if err := rows.Scan(
			&member.UserID,
			&member.WorkspaceID,
			&member.Role,
			&member.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.ImageURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workspace member: %w", err)
		}
		member.User = &user
		members = append(members, &member)
	}

	return members, rows.Err()
}
