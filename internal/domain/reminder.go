package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_reminder_job_repository.go -package mocks github.com/Planora/planora/internal/domain ReminderJobRepository

// ReminderJobStatus represents the execution state of a reminder job
type ReminderJobStatus string

const (
	// ReminderJobPending is for jobs waiting to run (including the durable
	// wait until the due date, expressed via NextRunAfter)
	ReminderJobPending ReminderJobStatus = "pending"
	// ReminderJobRunning is for jobs currently claimed by a worker
	ReminderJobRunning ReminderJobStatus = "running"
	// ReminderJobCompleted is terminal
	ReminderJobCompleted ReminderJobStatus = "completed"
	// ReminderJobFailed is terminal after retries are exhausted
	ReminderJobFailed ReminderJobStatus = "failed"
)

// ReminderCheckpoint records the last durable step of the notification
// workflow. Each transition is persisted before the next step runs, so a
// replayed job resumes instead of resending emails.
type ReminderCheckpoint string

const (
	// CheckpointNone means no email has been sent yet
	CheckpointNone ReminderCheckpoint = "none"
	// CheckpointNotified means the assignment email went out
	CheckpointNotified ReminderCheckpoint = "notified"
	// CheckpointReminded means the reminder email went out (terminal)
	CheckpointReminded ReminderCheckpoint = "reminded"
	// CheckpointSuppressed means the due date was the creation day, so no
	// reminder phase was entered (terminal)
	CheckpointSuppressed ReminderCheckpoint = "suppressed"
)

// ReminderJob is one durable run of the task-assignment notification
// workflow. Jobs are keyed UNIQUE(task_id, due_date) so a redelivered
// task.assigned event is skipped rather than repeated.
type ReminderJob struct {
	ID           string             `json:"id" db:"id"`
	TaskID       string             `json:"task_id" db:"task_id"`
	DueDate      time.Time          `json:"due_date" db:"due_date"`
	Origin       string             `json:"origin" db:"origin"`
	Status       ReminderJobStatus  `json:"status" db:"status"`
	Checkpoint   ReminderCheckpoint `json:"checkpoint" db:"checkpoint"`
	NextRunAfter *time.Time         `json:"next_run_after,omitempty" db:"next_run_after"`
	TimeoutAfter *time.Time         `json:"timeout_after,omitempty" db:"timeout_after"`
	RetryCount   int                `json:"retry_count" db:"retry_count"`
	MaxRetries   int                `json:"max_retries" db:"max_retries"`
	ErrorMessage string             `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
}

// DueDay returns the UTC calendar day of the due date
func (j *ReminderJob) DueDay() time.Time {
	y, m, d := j.DueDate.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WaitRequired reports whether the due date falls on a later UTC calendar
// day than the job's creation; same-day (or past) due dates suppress the
// reminder phase entirely.
func (j *ReminderJob) WaitRequired() bool {
	createdY, createdM, createdD := j.CreatedAt.UTC().Date()
	createdDay := time.Date(createdY, createdM, createdD, 0, 0, 0, 0, time.UTC)
	return j.DueDay().After(createdDay)
}

type ReminderJobRepository interface {
	// Create inserts a job; returns ConflictError when a job for the same
	// (task, due date) already exists
	Create(ctx context.Context, job *ReminderJob) error

	// GetByID retrieves a job
	GetByID(ctx context.Context, id string) (*ReminderJob, error)

	// ClaimDueJobs atomically marks up to limit due pending jobs as
	// running and returns them, along with running jobs whose claim
	// timeout expired (worker crashed mid-flight). Rows locked by other
	// workers are skipped.
	ClaimDueJobs(ctx context.Context, limit int) ([]*ReminderJob, error)

	// SetCheckpoint persists a workflow checkpoint on a running job
	SetCheckpoint(ctx context.Context, id string, checkpoint ReminderCheckpoint) error

	// ScheduleWake parks the job until the given instant (durable wait)
	ScheduleWake(ctx context.Context, id string, wakeAt time.Time) error

	// MarkCompleted finishes the job with its final checkpoint
	MarkCompleted(ctx context.Context, id string, checkpoint ReminderCheckpoint) error

	// MarkFailed records a permanent failure
	MarkFailed(ctx context.Context, id string, errorMsg string) error

	// RescheduleRetry re-queues a job after a transient failure
	RescheduleRetry(ctx context.Context, id string, nextRunAfter time.Time, errorMsg string) error
}
