package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Planora/planora/internal/domain"
)

// ProjectRepository implements domain.ProjectRepository using PostgreSQL
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository instance
func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, workspace_id, name, description, status, priority, progress,
		team_lead, start_date, end_date, created_at, updated_at`

// Create inserts a project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.WorkspaceID,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.Progress,
		project.TeamLead,
		project.StartDate,
		project.EndDate,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Project, error) {
	var project domain.Project
	var teamLead sql.NullString
	var startDate, endDate sql.NullTime

	err := scanner.Scan(
		&project.ID,
		&project.WorkspaceID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Priority,
		&project.Progress,
		&teamLead,
		&startDate,
		&endDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if teamLead.Valid {
		project.TeamLead = &teamLead.String
	}
	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if endDate.Valid {
		project.EndDate = &endDate.Time
	}

	return &project, nil
}

// GetByID retrieves a project without joined data
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// GetWithMembers retrieves a project with its members and their users
func (r *ProjectRepository) GetWithMembers(ctx context.Context, id string) (*domain.Project, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := r.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Members = members

	return project, nil
}

// Update writes the mutable project fields
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	project.UpdatedAt = time.Now().UTC()

	query, args, err := sq.Update("projects").
		Set("name", project.Name).
		Set("description", project.Description).
		Set("status", project.Status).
		Set("priority", project.Priority).
		Set("progress", project.Progress).
		Set("team_lead", project.TeamLead).
		Set("start_date", project.StartDate).
		Set("end_date", project.EndDate).
		Set("updated_at", project.UpdatedAt).
		Where(sq.Eq{"id": project.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "project", ID: project.ID}
	}

	return nil
}

// AddMember inserts a membership row
func (r *ProjectRepository) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	member.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_members (user_id, project_id, created_at)
		VALUES ($1, $2, $3)
	`,
		member.UserID,
		member.ProjectID,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("user is already a member of this project")
		}
		return fmt.Errorf("failed to insert project member: %w", err)
	}

	return nil
}

// AddMembers bulk-inserts membership rows, skipping duplicates
func (r *ProjectRepository) AddMembers(ctx context.Context, projectID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	builder := sq.Insert("project_members").
		Columns("user_id", "project_id", "created_at").
		Suffix("ON CONFLICT (user_id, project_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar)

	now := time.Now().UTC()
	for _, userID := range userIDs {
		builder = builder.Values(userID, projectID, now)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert project members: %w", err)
	}

	return nil
}

// IsLead reports whether the user is the project's team lead
func (r *ProjectRepository) IsLead(ctx context.Context, userID, projectID string) (bool, error) {
	var isLead bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM projects WHERE id = $1 AND team_lead = $2
		)
	`, projectID, userID).Scan(&isLead)
	if err != nil {
		return false, fmt.Errorf("failed to check project lead: %w", err)
	}
	return isLead, nil
}

// IsMember reports whether the user is a member of the project
func (r *ProjectRepository) IsMember(ctx context.Context, userID, projectID string) (bool, error) {
	var isMember bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM project_members
			WHERE user_id = $1 AND project_id = $2
		)
	`, userID, projectID).Scan(&isMember)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return isMember, nil
}

// ListByWorkspace returns a workspace's projects with members joined
func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	query, args, err := sq.Select(
		"id", "workspace_id", "name", "description", "status", "priority", "progress",
		"team_lead", "start_date", "end_date", "created_at", "updated_at").
		From("projects").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, project := range projects {
		members, err := r.listMembers(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		project.Members = members
	}

	return projects, nil
}

func (r *ProjectRepository) listMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	query, args, err := sq.Select(
		"m.user_id", "m.project_id", "m.created_at",
		"u.id", "u.email", "u.name", "u.image_url", "u.created_at", "u.updated_at").
		From("project_members m").
		Join("users u ON u.id = m.user_id").
		Where(sq.Eq{"m.project_id": projectID}).
		OrderBy("m.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	var members []*domain.ProjectMember
	for rows.Next() {
		var member domain.ProjectMember
		var user domain.User
		if err := rows.Scan(
			&member.UserID,
			&member.ProjectID,
			&member.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.ImageURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		member.User = &user
		members = append(members, &member)
	}

	return members, rows.Err()
}
