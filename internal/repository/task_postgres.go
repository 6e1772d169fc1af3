package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Planora/planora/internal/domain"
)

// TaskRepository implements domain.TaskRepository using PostgreSQL
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository instance
func NewTaskRepository(db *sql.DB) domain.TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.DueDate = task.DueDate.UTC()

	query := `
		INSERT INTO tasks (
			id, project_id, title, description, type, status, priority,
			assignee_id, due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.AssigneeID,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	var assigneeID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, description, type, status, priority,
			assignee_id, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&assigneeID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.String
	}

	return &task, nil
}

// GetWithAssignee retrieves a task with its assignee joined
func (r *TaskRepository) GetWithAssignee(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	var assigneeID sql.NullString
	var userID, userEmail, userName, userImage sql.NullString
	var userCreated, userUpdated sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.project_id, t.title, t.description, t.type, t.status, t.priority,
			t.assignee_id, t.due_date, t.created_at, t.updated_at,
			u.id, u.email, u.name, u.image_url, u.created_at, u.updated_at
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.id = $1
	`, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&assigneeID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&userID,
		&userEmail,
		&userName,
		&userImage,
		&userCreated,
		&userUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.String
	}
	if userID.Valid {
		task.Assignee = &domain.User{
			ID:        userID.String,
			Email:     userEmail.String,
			Name:      userName.String,
			ImageURL:  userImage.String,
			CreatedAt: userCreated.Time,
			UpdatedAt: userUpdated.Time,
		}
	}

	return &task, nil
}

// Update writes the mutable task fields
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	task.DueDate = task.DueDate.UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, type = $4, status = $5, priority = $6,
			assignee_id = $7, due_date = $8, updated_at = $9
		WHERE id = $1
	`,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.AssigneeID,
		task.DueDate,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "task", ID: task.ID}
	}

	return nil
}

// DeleteBatch removes the given tasks, returning how many existed
func (r *TaskRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// ListByProject returns a project's tasks with assignees joined
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query, args, err := sq.Select(
		"t.id", "t.project_id", "t.title", "t.description", "t.type", "t.status", "t.priority",
		"t.assignee_id", "t.due_date", "t.created_at", "t.updated_at",
		"u.id", "u.email", "u.name", "u.image_url", "u.created_at", "u.updated_at").
		From("tasks t").
		LeftJoin("users u ON u.id = t.assignee_id").
		Where(sq.Eq{"t.project_id": projectID}).
		OrderBy("t.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		var assigneeID sql.NullString
		var userID, userEmail, userName, userImage sql.NullString
		var userCreated, userUpdated sql.NullTime

		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.Title,
			&task.Description,
			&task.Type,
			&task.Status,
			&task.Priority,
			&assigneeID,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
			&userID,
			&userEmail,
			&userName,
			&userImage,
			&userCreated,
			&userUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if assigneeID.Valid {
			task.AssigneeID = &assigneeID.String
		}
		if userID.Valid {
			task.Assignee = &domain.User{
				ID:        userID.String,
				Email:     userEmail.String,
				Name:      userName.String,
				ImageURL:  userImage.String,
				CreatedAt: userCreated.Time,
				UpdatedAt: userUpdated.Time,
			}
		}

		tasks = append(tasks, &task)
	}

	return tasks, rows.Err()
}
