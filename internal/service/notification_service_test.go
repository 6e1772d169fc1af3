package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/domain/mocks"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/mailer"
	pkgmocks "github.com/Planora/planora/pkg/mocks"
)

type notificationTestDeps struct {
	jobRepo     *mocks.MockReminderJobRepository
	taskRepo    *mocks.MockTaskRepository
	projectRepo *mocks.MockProjectRepository
	mailer      *pkgmocks.MockMailer
	service     *NotificationService
}

func setupNotificationTest(t *testing.T) (*notificationTestDeps, *gomock.Controller) {
	ctrl := gomock.NewController(t)

	deps := &notificationTestDeps{
		jobRepo:     mocks.NewMockReminderJobRepository(ctrl),
		taskRepo:    mocks.NewMockTaskRepository(ctrl),
		projectRepo: mocks.NewMockProjectRepository(ctrl),
		mailer:      pkgmocks.NewMockMailer(ctrl),
	}
	deps.service = NewNotificationService(
		deps.jobRepo,
		deps.taskRepo,
		deps.projectRepo,
		deps.mailer,
		domain.NewInMemoryEventBus(),
		logger.NewTestLogger(t),
	)

	return deps, ctrl
}

func assignedTask(assigneeID string, dueDate time.Time) *domain.Task {
	return &domain.Task{
		ID:         "task-1",
		ProjectID:  "project-1",
		Title:      "Ship the release",
		Status:     "IN_PROGRESS",
		AssigneeID: &assigneeID,
		DueDate:    dueDate,
		Assignee: &domain.User{
			ID:    assigneeID,
			Email: "dev@example.com",
			Name:  "Dev One",
		},
	}
}

func TestNotificationService_AssignmentSchedulesReminder(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(72 * time.Hour)
	task := assignedTask("user-1", dueDate)

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     task.ID,
		DueDate:    dueDate,
		Origin:     "https://app.example.com",
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNone,
		MaxRetries: 3,
		CreatedAt:  time.Now().UTC(),
	}

	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
	deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
		Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
	deps.mailer.EXPECT().SendTaskAssigned(gomock.Any()).DoAndReturn(func(email mailer.TaskEmail) error {
		assert.Equal(t, "dev@example.com", email.To)
		assert.Equal(t, "Dev One", email.AssigneeName)
		assert.Equal(t, "Apollo", email.ProjectName)
		assert.Equal(t, "https://app.example.com", email.Origin)
		return nil
	})
	deps.jobRepo.EXPECT().SetCheckpoint(gomock.Any(), job.ID, domain.CheckpointNotified).Return(nil)
	deps.jobRepo.EXPECT().ScheduleWake(gomock.Any(), job.ID, dueDate).Return(nil)

	deps.service.ProcessJob(context.Background(), job)

	assert.Equal(t, domain.CheckpointNotified, job.Checkpoint)
}

func TestNotificationService_SameDayDueDateSuppressesReminder(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	// Due the same calendar day the job was created: no reminder phase
	now := time.Now().UTC()
	task := assignedTask("user-1", now)

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     task.ID,
		DueDate:    now,
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNone,
		MaxRetries: 3,
		CreatedAt:  now,
	}

	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
	deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
		Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
	deps.mailer.EXPECT().SendTaskAssigned(gomock.Any()).Return(nil)
	deps.jobRepo.EXPECT().SetCheckpoint(gomock.Any(), job.ID, domain.CheckpointNotified).Return(nil)
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), job.ID, domain.CheckpointSuppressed).Return(nil)

	deps.service.ProcessJob(context.Background(), job)
}

func TestNotificationService_ReminderSentWhenTaskNotDone(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(-1 * time.Hour)
	task := assignedTask("user-1", dueDate)

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     task.ID,
		DueDate:    dueDate,
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNotified,
		MaxRetries: 3,
		CreatedAt:  time.Now().UTC().Add(-48 * time.Hour),
	}

	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
	deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
		Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
	deps.mailer.EXPECT().SendTaskReminder(gomock.Any()).DoAndReturn(func(email mailer.TaskEmail) error {
		assert.Equal(t, "dev@example.com", email.To)
		assert.Equal(t, "Ship the release", email.TaskTitle)
		return nil
	})
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), job.ID, domain.CheckpointReminded).Return(nil)

	deps.service.ProcessJob(context.Background(), job)
}

func TestNotificationService_ReminderSkippedWhenTaskDone(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(-1 * time.Hour)
	task := assignedTask("user-1", dueDate)
	task.Status = domain.TaskStatusDone

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     task.ID,
		DueDate:    dueDate,
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNotified,
		MaxRetries: 3,
	}

	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
	deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
		Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
	// No SendTaskReminder expectation: the mock controller fails the
	// test if an email goes out anyway
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), job.ID, domain.CheckpointNotified).Return(nil)

	deps.service.ProcessJob(context.Background(), job)
}

func TestNotificationService_DeletedTaskTerminatesSilently(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     "task-gone",
		DueDate:    time.Now().UTC().Add(-1 * time.Hour),
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNotified,
		MaxRetries: 3,
	}

	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), "task-gone").
		Return(nil, &domain.ErrNotFound{Entity: "task", ID: "task-gone"})
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), job.ID, domain.CheckpointNotified).Return(nil)

	deps.service.ProcessJob(context.Background(), job)
}

func TestNotificationService_EarlyWakeReparksJob(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(24 * time.Hour)

	job := &domain.ReminderJob{
		ID:         "job-1",
		TaskID:     "task-1",
		DueDate:    dueDate,
		Status:     domain.ReminderJobRunning,
		Checkpoint: domain.CheckpointNotified,
		MaxRetries: 3,
	}

	deps.jobRepo.EXPECT().ScheduleWake(gomock.Any(), job.ID, dueDate).Return(nil)

	deps.service.ProcessJob(context.Background(), job)
}

func TestNotificationService_EmailFailureRetriesThenFails(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(48 * time.Hour)
	task := assignedTask("user-1", dueDate)
	sendErr := errors.New("smtp unreachable")

	t.Run("first failure reschedules", func(t *testing.T) {
		job := &domain.ReminderJob{
			ID:         "job-1",
			TaskID:     task.ID,
			DueDate:    dueDate,
			Status:     domain.ReminderJobRunning,
			Checkpoint: domain.CheckpointNone,
			RetryCount: 0,
			MaxRetries: 3,
			CreatedAt:  time.Now().UTC(),
		}

		deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
		deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
			Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
		deps.mailer.EXPECT().SendTaskAssigned(gomock.Any()).Return(sendErr)
		deps.jobRepo.EXPECT().RescheduleRetry(gomock.Any(), job.ID, gomock.Any(), gomock.Any()).Return(nil)

		deps.service.ProcessJob(context.Background(), job)
	})

	t.Run("exhausted retries fail permanently", func(t *testing.T) {
		job := &domain.ReminderJob{
			ID:         "job-2",
			TaskID:     task.ID,
			DueDate:    dueDate,
			Status:     domain.ReminderJobRunning,
			Checkpoint: domain.CheckpointNone,
			RetryCount: 2,
			MaxRetries: 3,
			CreatedAt:  time.Now().UTC(),
		}

		deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
		deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
			Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
		deps.mailer.EXPECT().SendTaskAssigned(gomock.Any()).Return(sendErr)
		deps.jobRepo.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).Return(nil)

		deps.service.ProcessJob(context.Background(), job)
	})
}

func TestNotificationService_DuplicateEventSkipped(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(48 * time.Hour)
	assignee := "user-1"
	task := &domain.Task{
		ID:         "task-1",
		ProjectID:  "project-1",
		AssigneeID: &assignee,
		DueDate:    dueDate,
	}

	deps.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).Return(task, nil)
	deps.jobRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.NewConflictError("reminder job already exists for task task-1"))
	// No email, no further job writes: the duplicate is dropped

	deps.service.handleTaskAssigned(context.Background(), domain.EventPayload{
		Type:     domain.EventTaskAssigned,
		EntityID: task.ID,
		Data:     map[string]interface{}{"origin": "https://app.example.com"},
	})
}

func TestNotificationService_AssignmentSurvivesRequestCancellation(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	dueDate := time.Now().UTC().Add(48 * time.Hour)
	task := assignedTask("user-1", dueDate)

	// The event is published with the HTTP request context, which is
	// cancelled once the response is written. The workflow must still
	// create the job and send the assignment email.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deps.taskRepo.EXPECT().GetByID(gomock.Any(), task.ID).
		DoAndReturn(func(ctx context.Context, _ string) (*domain.Task, error) {
			require.NoError(t, ctx.Err(), "workflow context must not carry the request cancellation")
			return task, nil
		})
	deps.jobRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, job *domain.ReminderJob) error {
			require.NoError(t, ctx.Err())
			job.ID = "job-1"
			job.CreatedAt = time.Now().UTC()
			return nil
		})
	deps.taskRepo.EXPECT().GetWithAssignee(gomock.Any(), task.ID).Return(task, nil)
	deps.projectRepo.EXPECT().GetByID(gomock.Any(), task.ProjectID).
		Return(&domain.Project{ID: task.ProjectID, Name: "Apollo"}, nil)
	deps.mailer.EXPECT().SendTaskAssigned(gomock.Any()).Return(nil)
	deps.jobRepo.EXPECT().SetCheckpoint(gomock.Any(), "job-1", domain.CheckpointNotified).Return(nil)
	deps.jobRepo.EXPECT().ScheduleWake(gomock.Any(), "job-1", dueDate).Return(nil)

	deps.service.handleTaskAssigned(ctx, domain.EventPayload{
		Type:     domain.EventTaskAssigned,
		EntityID: task.ID,
		Data:     map[string]interface{}{"origin": "https://app.example.com"},
	})
}

func TestNotificationService_ProcessDueJobs(t *testing.T) {
	deps, ctrl := setupNotificationTest(t)
	defer ctrl.Finish()

	jobs := []*domain.ReminderJob{
		{ID: "job-1", TaskID: "task-1", Checkpoint: domain.CheckpointReminded},
		{ID: "job-2", TaskID: "task-2", Checkpoint: domain.CheckpointSuppressed},
	}

	deps.jobRepo.EXPECT().ClaimDueJobs(gomock.Any(), 10).Return(jobs, nil)
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), "job-1", domain.CheckpointReminded).Return(nil)
	deps.jobRepo.EXPECT().MarkCompleted(gomock.Any(), "job-2", domain.CheckpointSuppressed).Return(nil)

	processed, err := deps.service.ProcessDueJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
}
