package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Planora/planora/internal/domain"
)

// ReminderJobRepository implements domain.ReminderJobRepository using PostgreSQL
type ReminderJobRepository struct {
	db *sql.DB
}

// NewReminderJobRepository creates a new ReminderJobRepository instance
func NewReminderJobRepository(db *sql.DB) domain.ReminderJobRepository {
	return &ReminderJobRepository{db: db}
}

const reminderJobColumns = `id, task_id, due_date, origin, status, checkpoint,
		next_run_after, timeout_after, retry_count, max_retries, error_message,
		created_at, updated_at, completed_at`

// claimTimeout bounds how long a claimed job may sit in running before
// another worker is allowed to reclaim it.
const claimTimeout = 5 * time.Minute

// Create inserts a job. The UNIQUE(task_id, due_date) constraint turns a
// redelivered assignment event into a ConflictError the caller can skip.
func (r *ReminderJobRepository) Create(ctx context.Context, job *domain.ReminderJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.ReminderJobPending
	}
	if job.Checkpoint == "" {
		job.Checkpoint = domain.CheckpointNone
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.DueDate = job.DueDate.UTC()

	// A job inserted in running state is already claimed by its creator;
	// give it a claim timeout so a crash mid-flight leaves it reclaimable.
	if job.Status == domain.ReminderJobRunning && job.TimeoutAfter == nil {
		timeoutAfter := now.Add(claimTimeout)
		job.TimeoutAfter = &timeoutAfter
	}

	query := `
		INSERT INTO reminder_jobs (` + reminderJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.TaskID,
		job.DueDate,
		job.Origin,
		job.Status,
		job.Checkpoint,
		job.NextRunAfter,
		job.TimeoutAfter,
		job.RetryCount,
		job.MaxRetries,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
		job.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("reminder job already exists for task " + job.TaskID)
		}
		return fmt.Errorf("failed to insert reminder job: %w", err)
	}

	return nil
}

func scanReminderJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.ReminderJob, error) {
	var job domain.ReminderJob
	var nextRunAfter, timeoutAfter, completedAt sql.NullTime
	var errorMessage sql.NullString

	err := scanner.Scan(
		&job.ID,
		&job.TaskID,
		&job.DueDate,
		&job.Origin,
		&job.Status,
		&job.Checkpoint,
		&nextRunAfter,
		&timeoutAfter,
		&job.RetryCount,
		&job.MaxRetries,
		&errorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if nextRunAfter.Valid {
		job.NextRunAfter = &nextRunAfter.Time
	}
	if timeoutAfter.Valid {
		job.TimeoutAfter = &timeoutAfter.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}

	return &job, nil
}

// GetByID retrieves a job
func (r *ReminderJobRepository) GetByID(ctx context.Context, id string) (*domain.ReminderJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reminderJobColumns+` FROM reminder_jobs WHERE id = $1`, id)

	job, err := scanReminderJob(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "reminder job", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder job: %w", err)
	}

	return job, nil
}

// ClaimDueJobs selects claimable jobs with FOR UPDATE SKIP LOCKED and
// flips them to running inside one transaction, so concurrent workers
// never process the same job twice. Claimable means pending and due, or
// running with an expired claim timeout (the worker holding the claim
// died before finishing).
func (r *ReminderJobRepository) ClaimDueJobs(ctx context.Context, limit int) ([]*domain.ReminderJob, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+reminderJobColumns+`
		FROM reminder_jobs
		WHERE (status = $1 AND (next_run_after IS NULL OR next_run_after <= $2))
			OR (status = $3 AND timeout_after IS NOT NULL AND timeout_after <= $2)
		ORDER BY created_at ASC
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	`, domain.ReminderJobPending, now, domain.ReminderJobRunning, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select due jobs: %w", err)
	}

	var jobs []*domain.ReminderJob
	for rows.Next() {
		job, err := scanReminderJob(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reminder job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	timeoutAfter := now.Add(claimTimeout)
	for _, job := range jobs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE reminder_jobs
			SET status = $2, timeout_after = $3, updated_at = $4
			WHERE id = $1
		`, job.ID, domain.ReminderJobRunning, timeoutAfter, now); err != nil {
			return nil, fmt.Errorf("failed to claim reminder job: %w", err)
		}
		job.Status = domain.ReminderJobRunning
		job.TimeoutAfter = &timeoutAfter
		job.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return jobs, nil
}

// SetCheckpoint persists a workflow checkpoint on a running job
func (r *ReminderJobRepository) SetCheckpoint(ctx context.Context, id string, checkpoint domain.ReminderCheckpoint) error {
	return r.exec(ctx, id, `
		UPDATE reminder_jobs
		SET checkpoint = $2, updated_at = $3
		WHERE id = $1
	`, checkpoint, time.Now().UTC())
}

// ScheduleWake parks the job until wakeAt by putting it back to pending
// with next_run_after set. The scheduler will not pick it up earlier.
func (r *ReminderJobRepository) ScheduleWake(ctx context.Context, id string, wakeAt time.Time) error {
	return r.exec(ctx, id, `
		UPDATE reminder_jobs
		SET status = $2, next_run_after = $3, timeout_after = NULL, updated_at = $4
		WHERE id = $1
	`, domain.ReminderJobPending, wakeAt.UTC(), time.Now().UTC())
}

// MarkCompleted finishes the job with its final checkpoint
func (r *ReminderJobRepository) MarkCompleted(ctx context.Context, id string, checkpoint domain.ReminderCheckpoint) error {
	now := time.Now().UTC()
	return r.exec(ctx, id, `
		UPDATE reminder_jobs
		SET status = $2, checkpoint = $3, completed_at = $4, updated_at = $5
		WHERE id = $1
	`, domain.ReminderJobCompleted, checkpoint, now, now)
}

// MarkFailed records a permanent failure
func (r *ReminderJobRepository) MarkFailed(ctx context.Context, id string, errorMsg string) error {
	now := time.Now().UTC()
	return r.exec(ctx, id, `
		UPDATE reminder_jobs
		SET status = $2, error_message = $3, completed_at = $4, updated_at = $5
		WHERE id = $1
	`, domain.ReminderJobFailed, errorMsg, now, now)
}

// RescheduleRetry re-queues a job after a transient failure, bumping the
// retry counter
func (r *ReminderJobRepository) RescheduleRetry(ctx context.Context, id string, nextRunAfter time.Time, errorMsg string) error {
	return r.exec(ctx, id, `
		UPDATE reminder_jobs
		SET status = $2, next_run_after = $3, timeout_after = NULL,
			retry_count = retry_count + 1, error_message = $4, updated_at = $5
		WHERE id = $1
	`, domain.ReminderJobPending, nextRunAfter.UTC(), errorMsg, time.Now().UTC())
}

func (r *ReminderJobRepository) exec(ctx context.Context, id, query string, args ...interface{}) error {
	execArgs := append([]interface{}{id}, args...)

	result, err := r.db.ExecContext(ctx, query, execArgs...)
	if err != nil {
		return fmt.Errorf("failed to update reminder job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "reminder job", ID: id}
	}

	return nil
}
