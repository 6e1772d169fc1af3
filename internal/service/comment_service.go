package service

import (
	"context"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// CommentService implements domain.CommentServiceInterface
type CommentService struct {
	commentRepo domain.CommentRepository
	taskRepo    domain.TaskRepository
	projectRepo domain.ProjectRepository
	userRepo    domain.UserRepository
	logger      logger.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo domain.CommentRepository,
	taskRepo domain.TaskRepository,
	projectRepo domain.ProjectRepository,
	userRepo domain.UserRepository,
	logger logger.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create adds a comment to a task. The requester must be a member of
// the task's project.
func (s *CommentService) Create(ctx context.Context, requesterID string, req *domain.CreateCommentRequest) (*domain.Comment, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "CommentService", "Create")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(ctx, requesterID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		err = domain.NewPermissionError("only project members can comment on tasks")
		return nil, err
	}

	comment := &domain.Comment{
		TaskID:  req.TaskID,
		UserID:  requesterID,
		Content: req.Content,
	}
	if err = s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if author, err := s.userRepo.GetByID(ctx, requesterID); err == nil {
		comment.User = author
	}

	return comment, nil
}

// ListByTask returns a task's comments ordered by creation time. Like
// Create, it is gated on membership of the task's project.
func (s *CommentService) ListByTask(ctx context.Context, requesterID, taskID string) ([]*domain.Comment, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "CommentService", "ListByTask")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(ctx, requesterID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		err = domain.NewPermissionError("only project members can view task comments")
		return nil, err
	}

	return s.commentRepo.ListByTask(ctx, taskID)
}
