package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/mailer"
	"github.com/Planora/planora/pkg/tracing"
)

const (
	defaultJobMaxRetries = 3
	defaultRetryBackoff  = 1 * time.Minute
)

// NotificationService runs the task-assignment notification workflow as
// a checkpointed job per (task, due date). Every transition is written
// to the reminder_jobs table before the next step runs, so a job
// interrupted by a crash or restart resumes where it stopped instead of
// resending emails. The wait until the due date is a plain next_run_after
// timestamp on the row.
type NotificationService struct {
	jobRepo      domain.ReminderJobRepository
	taskRepo     domain.TaskRepository
	projectRepo  domain.ProjectRepository
	mailer       mailer.Mailer
	logger       logger.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// NewNotificationService creates the workflow service and subscribes it
// to task.assigned events
func NewNotificationService(
	jobRepo domain.ReminderJobRepository,
	taskRepo domain.TaskRepository,
	projectRepo domain.ProjectRepository,
	mail mailer.Mailer,
	eventBus domain.EventBus,
	log logger.Logger,
) *NotificationService {
	s := &NotificationService{
		jobRepo:      jobRepo,
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		mailer:       mail,
		logger:       log,
		maxRetries:   defaultJobMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}

	eventBus.Subscribe(domain.EventTaskAssigned, s.handleTaskAssigned)

	return s
}

// handleTaskAssigned creates the job for a freshly assigned task and
// runs it inline. The job row is created already claimed so the poll
// scheduler cannot pick it up concurrently. A redelivered event hits
// the UNIQUE(task_id, due_date) constraint and is dropped.
func (s *NotificationService) handleTaskAssigned(ctx context.Context, payload domain.EventPayload) {
	// The publisher's context is the HTTP request context, which is
	// cancelled as soon as the create response is written. The workflow
	// outlives the request, so detach from its cancellation.
	ctx = context.WithoutCancel(ctx)

	origin, _ := payload.Data["origin"].(string)

	task, err := s.taskRepo.GetByID(ctx, payload.EntityID)
	if err != nil {
		s.logger.WithField("task_id", payload.EntityID).Error("Failed to load task for notification: " + err.Error())
		return
	}

	job := &domain.ReminderJob{
		TaskID:     task.ID,
		DueDate:    task.DueDate,
		Origin:     origin,
		Status:     domain.ReminderJobRunning,
		MaxRetries: s.maxRetries,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		if domain.IsConflict(err) {
			s.logger.WithField("task_id", task.ID).Debug("Notification job already exists, skipping duplicate event")
			return
		}
		s.logger.WithField("task_id", task.ID).Error("Failed to create notification job: " + err.Error())
		return
	}

	s.ProcessJob(ctx, job)
}

// ProcessDueJobs claims up to limit due jobs and runs each through the
// workflow. Called by the reminder scheduler on every tick.
func (s *NotificationService) ProcessDueJobs(ctx context.Context, limit int) (int, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "NotificationService", "ProcessDueJobs")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	jobs, err := s.jobRepo.ClaimDueJobs(ctx, limit)
	if err != nil {
		return 0, err
	}

	for _, job := range jobs {
		s.ProcessJob(ctx, job)
	}

	return len(jobs), nil
}

// ProcessJob advances a claimed job from its last checkpoint. Job-level
// failures are recorded on the row, never returned; one broken job must
// not stall the batch.
func (s *NotificationService) ProcessJob(ctx context.Context, job *domain.ReminderJob) {
	switch job.Checkpoint {
	case domain.CheckpointNone:
		s.runAssignmentPhase(ctx, job)
	case domain.CheckpointNotified:
		s.runReminderPhase(ctx, job)
	default:
		// Terminal checkpoint on a claimed job means a crash happened
		// between the checkpoint write and completion. Just finish it.
		s.complete(ctx, job, job.Checkpoint)
	}
}

// runAssignmentPhase sends the assignment email and either finishes the
// job (same-day due date) or parks it until the due date.
func (s *NotificationService) runAssignmentPhase(ctx context.Context, job *domain.ReminderJob) {
	email, _, ok, err := s.loadEmailContext(ctx, job)
	if err != nil {
		s.retryOrFail(ctx, job, err)
		return
	}
	if !ok {
		// Task or assignee vanished before the email went out
		s.complete(ctx, job, job.Checkpoint)
		return
	}

	if err := s.mailer.SendTaskAssigned(email); err != nil {
		s.retryOrFail(ctx, job, fmt.Errorf("assignment email: %w", err))
		return
	}

	if err := s.jobRepo.SetCheckpoint(ctx, job.ID, domain.CheckpointNotified); err != nil {
		s.retryOrFail(ctx, job, err)
		return
	}
	job.Checkpoint = domain.CheckpointNotified

	if !job.WaitRequired() {
		s.complete(ctx, job, domain.CheckpointSuppressed)
		return
	}

	if err := s.jobRepo.ScheduleWake(ctx, job.ID, job.DueDate); err != nil {
		s.retryOrFail(ctx, job, err)
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"job_id":  job.ID,
		"task_id": job.TaskID,
		"wake_at": job.DueDate,
	}).Info("Assignment email sent, reminder scheduled")
}

// runReminderPhase re-reads the task at wake time and sends the
// reminder unless the task is gone, unassigned or already done.
func (s *NotificationService) runReminderPhase(ctx context.Context, job *domain.ReminderJob) {
	// A retry rescheduled before the due date wakes the job early;
	// park it again instead of reminding ahead of time.
	if time.Now().UTC().Before(job.DueDate.UTC()) {
		if err := s.jobRepo.ScheduleWake(ctx, job.ID, job.DueDate); err != nil {
			s.retryOrFail(ctx, job, err)
		}
		return
	}

	email, task, ok, err := s.loadEmailContext(ctx, job)
	if err != nil {
		s.retryOrFail(ctx, job, err)
		return
	}
	if !ok {
		// Task deleted or unassigned while waiting; nothing to remind
		s.complete(ctx, job, job.Checkpoint)
		return
	}

	if task.Status == domain.TaskStatusDone {
		s.logger.WithField("task_id", job.TaskID).Debug("Task completed before due date, skipping reminder")
		s.complete(ctx, job, job.Checkpoint)
		return
	}

	if err := s.mailer.SendTaskReminder(email); err != nil {
		s.retryOrFail(ctx, job, fmt.Errorf("reminder email: %w", err))
		return
	}

	s.complete(ctx, job, domain.CheckpointReminded)

	s.logger.WithFields(map[string]interface{}{
		"job_id":  job.ID,
		"task_id": job.TaskID,
	}).Info("Reminder email sent")
}

// loadEmailContext gathers the email fields from the current task,
// assignee and project rows. ok is false when any of them is gone,
// which silently terminates the workflow.
func (s *NotificationService) loadEmailContext(ctx context.Context, job *domain.ReminderJob) (mailer.TaskEmail, *domain.Task, bool, error) {
	task, err := s.taskRepo.GetWithAssignee(ctx, job.TaskID)
	if err != nil {
		if domain.IsNotFound(err) {
			return mailer.TaskEmail{}, nil, false, nil
		}
		return mailer.TaskEmail{}, nil, false, err
	}
	if task.Assignee == nil {
		return mailer.TaskEmail{}, nil, false, nil
	}

	project, err := s.projectRepo.GetByID(ctx, task.ProjectID)
	if err != nil {
		if domain.IsNotFound(err) {
			return mailer.TaskEmail{}, nil, false, nil
		}
		return mailer.TaskEmail{}, nil, false, err
	}

	name := task.Assignee.Name
	if name == "" {
		name = task.Assignee.Email
	}

	return mailer.TaskEmail{
		To:           task.Assignee.Email,
		AssigneeName: name,
		ProjectName:  project.Name,
		TaskTitle:    task.Title,
		DueDate:      task.DueDate,
		Origin:       job.Origin,
	}, task, true, nil
}

func (s *NotificationService) complete(ctx context.Context, job *domain.ReminderJob, checkpoint domain.ReminderCheckpoint) {
	if err := s.jobRepo.MarkCompleted(ctx, job.ID, checkpoint); err != nil {
		s.logger.WithField("job_id", job.ID).Error("Failed to complete notification job: " + err.Error())
	}
}

// retryOrFail re-queues the job with doubling backoff, or marks it
// failed once the retry budget is spent
func (s *NotificationService) retryOrFail(ctx context.Context, job *domain.ReminderJob, cause error) {
	if job.RetryCount+1 >= job.MaxRetries {
		s.logger.WithFields(map[string]interface{}{
			"job_id":  job.ID,
			"task_id": job.TaskID,
		}).Error("Notification job failed permanently: " + cause.Error())

		if err := s.jobRepo.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
			s.logger.WithField("job_id", job.ID).Error("Failed to mark notification job failed: " + err.Error())
		}
		return
	}

	backoff := s.retryBackoff << uint(job.RetryCount)
	nextRun := time.Now().UTC().Add(backoff)

	s.logger.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"retry":    job.RetryCount + 1,
		"next_run": nextRun,
	}).Warn("Notification job step failed, retrying: " + cause.Error())

	if err := s.jobRepo.RescheduleRetry(ctx, job.ID, nextRun, cause.Error()); err != nil {
		s.logger.WithField("job_id", job.ID).Error("Failed to reschedule notification job: " + err.Error())
	}
}
