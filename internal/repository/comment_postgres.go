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

// CommentRepository implements domain.CommentRepository using PostgreSQL
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new CommentRepository instance
func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (id, task_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		comment.ID,
		comment.TaskID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

// ListByTask returns a task's comments with authors joined, oldest first
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	query, args, err := sq.Select(
		"c.id", "c.task_id", "c.user_id", "c.content", "c.created_at",
		"u.id", "u.email", "u.name", "u.image_url", "u.created_at", "u.updated_at").
		From("comments c").
		Join("users u ON u.id = c.user_id").
		Where(sq.Eq{"c.task_id": taskID}).
		OrderBy("c.created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var comment domain.Comment
		var user domain.User
		if err := rows.Scan(
			&comment.ID,
			&comment.TaskID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.ImageURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.User = &user
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}
