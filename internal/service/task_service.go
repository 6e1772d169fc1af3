package service

import (
	"context"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// TaskService implements domain.TaskServiceInterface
type TaskService struct {
	taskRepo    domain.TaskRepository
	projectRepo domain.ProjectRepository
	eventBus    domain.EventBus
	logger      logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	projectRepo domain.ProjectRepository,
	eventBus domain.EventBus,
	logger logger.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Create creates a task in a project. Only the team lead can create
// tasks, and the assignee, when given, must already be a project
// member. A task created with an assignee publishes task.assigned so
// the notification workflow picks it up.
func (s *TaskService) Create(ctx context.Context, requesterID string, req *domain.CreateTaskRequest, origin string) (*domain.Task, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "TaskService", "Create")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	dueDate, err := req.Validate()
	if err != nil {
		return nil, err
	}

	if _, err = s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	isLead, err := s.projectRepo.IsLead(ctx, requesterID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !isLead {
		err = domain.NewPermissionError("only the team lead can create tasks")
		return nil, err
	}

	var assigneeID *string
	if req.AssigneeID != "" {
		if err = s.checkAssignee(ctx, req.AssigneeID, req.ProjectID); err != nil {
			return nil, err
		}
		assigneeID = &req.AssigneeID
	}

	task := &domain.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
	}
	if err = s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	if task.AssigneeID != nil {
		s.eventBus.Publish(ctx, domain.EventPayload{
			Type:     domain.EventTaskAssigned,
			EntityID: task.ID,
			Data:     map[string]interface{}{"origin": origin},
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"task_id":    task.ID,
		"project_id": task.ProjectID,
	}).Info("Created task")

	return s.taskRepo.GetWithAssignee(ctx, task.ID)
}

func (s *TaskService) checkAssignee(ctx context.Context, assigneeID, projectID string) error {
	isMember, err := s.projectRepo.IsMember(ctx, assigneeID, projectID)
	if err != nil {
		return err
	}
	if !isMember {
		return domain.NewPermissionError("assignee is not a member of the project")
	}
	return nil
}

// Update updates a task. Only the team lead of the task's project can
// update it. Reassignment keeps the member constraint.
func (s *TaskService) Update(ctx context.Context, requesterID, taskID string, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "TaskService", "Update")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	isLead, err := s.projectRepo.IsLead(ctx, requesterID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !isLead {
		err = domain.NewPermissionError("only the team lead can update tasks")
		return nil, err
	}

	if err = req.Apply(task); err != nil {
		return nil, err
	}

	if req.AssigneeID != nil && task.AssigneeID != nil {
		if err = s.checkAssignee(ctx, *task.AssigneeID, task.ProjectID); err != nil {
			return nil, err
		}
	}

	if err = s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return s.taskRepo.GetWithAssignee(ctx, task.ID)
}

// DeleteBatch removes tasks. The requester must be the team lead of
// the first task's project; all tasks in one request come from a
// single board.
func (s *TaskService) DeleteBatch(ctx context.Context, requesterID string, taskIDs []string) error {
	ctx, span := tracing.StartServiceSpan(ctx, "TaskService", "DeleteBatch")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	req := &domain.DeleteTasksRequest{TaskIDs: taskIDs}
	if err = req.Validate(); err != nil {
		return err
	}

	task, err := s.taskRepo.GetByID(ctx, taskIDs[0])
	if err != nil {
		return err
	}

	isLead, err := s.projectRepo.IsLead(ctx, requesterID, task.ProjectID)
	if err != nil {
		return err
	}
	if !isLead {
		err = domain.NewPermissionError("only the team lead can delete tasks")
		return err
	}

	deleted, err := s.taskRepo.DeleteBatch(ctx, taskIDs)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"project_id": task.ProjectID,
		"deleted":    deleted,
	}).Info("Deleted tasks")

	return nil
}
