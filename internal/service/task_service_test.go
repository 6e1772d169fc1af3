package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/domain/mocks"
	"github.com/Planora/planora/pkg/logger"
)

type taskTestDeps struct {
	taskRepo    *mocks.MockTaskRepository
	projectRepo *mocks.MockProjectRepository
	eventBus    *mocks.MockEventBus
	service     *TaskService
}

func setupTaskTest(t *testing.T) (*taskTestDeps, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	deps := &taskTestDeps{
		taskRepo:    mocks.NewMockTaskRepository(ctrl),
		projectRepo: mocks.NewMockProjectRepository(ctrl),
		eventBus:    mocks.NewMockEventBus(ctrl),
	}
	deps.service = NewTaskService(deps.taskRepo, deps.projectRepo, deps.eventBus, logger.NewTestLogger(t))
	return deps, ctrl
}

func TestTaskService_CreatePublishesAssignedEvent(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	req := &domain.CreateTaskRequest{
		ProjectID:  "project-1",
		Title:      "Write migration",
		AssigneeID: "user-2",
		DueDate:    "2026-09-15",
	}

	deps.projectRepo.EXPECT().GetByID(gomock.Any(), "project-1").
		Return(&domain.Project{ID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "lead-1", "project-1").Return(true, nil)
	deps.projectRepo.EXPECT().IsMember(gomock.Any(), "user-2", "project-1").Return(true, nil)
	deps.taskRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.Task) error {
			task.ID = "task-1"
			assert.Equal(t, "Write migration", task.Title)
			require.NotNil(t, task.AssigneeID)
			assert.Equal(t, "user-2", *task.AssigneeID)
			return nil
		})
	deps.eventBus.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, event domain.EventPayload) {
			assert.Equal(t, domain.EventTaskAssigned, event.Type)
			assert.Equal(t, "task-1", event.EntityID)
			assert.Equal(t, "https://app.example.com", event.Data["origin"])
		})
	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), "task-1").
		Return(&domain.Task{ID: "task-1"}, nil)

	task, err := deps.service.Create(context.Background(), "lead-1", req, "https://app.example.com")
	require.NoError(t, err)
	assert.Equal(t, "task-1", task.ID)
}

func TestTaskService_CreateWithoutAssigneePublishesNothing(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	req := &domain.CreateTaskRequest{
		ProjectID: "project-1",
		Title:     "Triage backlog",
		DueDate:   "2026-09-15",
	}

	deps.projectRepo.EXPECT().GetByID(gomock.Any(), "project-1").
		Return(&domain.Project{ID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "lead-1", "project-1").Return(true, nil)
	deps.taskRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.Task) error {
			task.ID = "task-1"
			return nil
		})
	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), "task-1").
		Return(&domain.Task{ID: "task-1"}, nil)

	_, err := deps.service.Create(context.Background(), "lead-1", req, "")
	require.NoError(t, err)
}

func TestTaskService_CreateRejectsNonMemberAssignee(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	req := &domain.CreateTaskRequest{
		ProjectID:  "project-1",
		Title:      "Write migration",
		AssigneeID: "outsider",
		DueDate:    "2026-09-15",
	}

	deps.projectRepo.EXPECT().GetByID(gomock.Any(), "project-1").
		Return(&domain.Project{ID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "lead-1", "project-1").Return(true, nil)
	deps.projectRepo.EXPECT().IsMember(gomock.Any(), "outsider", "project-1").Return(false, nil)
	// No Create, no Publish: the task must not exist

	_, err := deps.service.Create(context.Background(), "lead-1", req, "")
	require.Error(t, err)
	var permissionErr *domain.PermissionError
	assert.ErrorAs(t, err, &permissionErr)
}

func TestTaskService_CreateForbiddenForNonLead(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	req := &domain.CreateTaskRequest{
		ProjectID: "project-1",
		Title:     "Write migration",
		DueDate:   "2026-09-15",
	}

	deps.projectRepo.EXPECT().GetByID(gomock.Any(), "project-1").
		Return(&domain.Project{ID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "member-1", "project-1").Return(false, nil)

	_, err := deps.service.Create(context.Background(), "member-1", req, "")
	var permissionErr *domain.PermissionError
	assert.ErrorAs(t, err, &permissionErr)
}

func TestTaskService_UpdateMergesFields(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	existing := &domain.Task{
		ID:        "task-1",
		ProjectID: "project-1",
		Title:     "Old title",
		Status:    "TODO",
		DueDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}

	newStatus := domain.TaskStatusDone
	req := &domain.UpdateTaskRequest{Status: &newStatus}

	deps.taskRepo.EXPECT().GetByID(gomock.Any(), "task-1").Return(existing, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "lead-1", "project-1").Return(true, nil)
	deps.taskRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.Task) error {
			assert.Equal(t, domain.TaskStatusDone, task.Status)
			assert.Equal(t, "Old title", task.Title)
			return nil
		})
	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), "task-1").Return(existing, nil)

	_, err := deps.service.Update(context.Background(), "lead-1", "task-1", req)
	require.NoError(t, err)
}

func TestTaskService_DeleteBatchForbiddenForNonLead(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	deps.taskRepo.EXPECT().GetByID(gomock.Any(), "task-1").
		Return(&domain.Task{ID: "task-1", ProjectID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "member-1", "project-1").Return(false, nil)

	err := deps.service.DeleteBatch(context.Background(), "member-1", []string{"task-1", "task-2"})
	var permissionErr *domain.PermissionError
	assert.ErrorAs(t, err, &permissionErr)
}

func TestTaskService_DeleteBatch(t *testing.T) {
	deps, ctrl := setupTaskTest(t)
	defer ctrl.Finish()

	ids := []string{"task-1", "task-2"}

	deps.taskRepo.EXPECT().GetByID(gomock.Any(), "task-1").
		Return(&domain.Task{ID: "task-1", ProjectID: "project-1"}, nil)
	deps.projectRepo.EXPECT().IsLead(gomock.Any(), "lead-1", "project-1").Return(true, nil)
	deps.taskRepo.EXPECT().DeleteBatch(gomock.Any(), ids).Return(int64(2), nil)

	require.NoError(t, deps.service.DeleteBatch(context.Background(), "lead-1", ids))
}
