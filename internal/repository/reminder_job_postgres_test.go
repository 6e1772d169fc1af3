package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
)

var reminderJobRowColumns = []string{
	"id", "task_id", "due_date", "origin", "status", "checkpoint",
	"next_run_after", "timeout_after", "retry_count", "max_retries", "error_message",
	"created_at", "updated_at", "completed_at",
}

func setupReminderJobTest(t *testing.T) (*sqlmock.Sqlmock, domain.ReminderJobRepository, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewReminderJobRepository(db)
	return &mock, repo, func() { db.Close() }
}

func TestReminderJobRepository_Create(t *testing.T) {
	t.Run("defaults id, status and checkpoint", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		job := &domain.ReminderJob{
			TaskID:     "task-1",
			DueDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			Origin:     "https://app.example.com",
			MaxRetries: 3,
		}

		(*mock).ExpectExec(`INSERT INTO reminder_jobs`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), job))
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, domain.ReminderJobPending, job.Status)
		assert.Equal(t, domain.CheckpointNone, job.Checkpoint)
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("redelivered event conflicts on task and due date", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		(*mock).ExpectExec(`INSERT INTO reminder_jobs`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), &domain.ReminderJob{
			TaskID:  "task-1",
			DueDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		})
		assert.True(t, domain.IsConflict(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestReminderJobRepository_GetByID(t *testing.T) {
	mock, repo, cleanup := setupReminderJobTest(t)
	defer cleanup()

	now := time.Now().UTC()
	wake := now.Add(24 * time.Hour)
	rows := sqlmock.NewRows(reminderJobRowColumns).
		AddRow("job-1", "task-1", now.Add(48*time.Hour), "https://app.example.com",
			domain.ReminderJobPending, domain.CheckpointNotified,
			wake, nil, 0, 3, nil, now, now, nil)

	(*mock).ExpectQuery(`SELECT (.+) FROM reminder_jobs WHERE id`).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", job.TaskID)
	assert.Equal(t, domain.CheckpointNotified, job.Checkpoint)
	require.NotNil(t, job.NextRunAfter)
	assert.WithinDuration(t, wake, *job.NextRunAfter, time.Second)
	assert.Nil(t, job.CompletedAt)
	assert.NoError(t, (*mock).ExpectationsWereMet())
}

func TestReminderJobRepository_ClaimDueJobs(t *testing.T) {
	t.Run("claims due pending jobs in one transaction", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		now := time.Now().UTC()
		rows := sqlmock.NewRows(reminderJobRowColumns).
			AddRow("job-1", "task-1", now, "", domain.ReminderJobPending, domain.CheckpointNone,
				nil, nil, 0, 3, nil, now, now, nil).
			AddRow("job-2", "task-2", now, "", domain.ReminderJobPending, domain.CheckpointNotified,
				now.Add(-time.Minute), nil, 0, 3, nil, now, now, nil)

		(*mock).ExpectBegin()
		(*mock).ExpectQuery(`SELECT (.+) FOR UPDATE SKIP LOCKED`).
			WithArgs(domain.ReminderJobPending, sqlmock.AnyArg(), domain.ReminderJobRunning, 10).
			WillReturnRows(rows)
		(*mock).ExpectExec(`UPDATE reminder_jobs`).
			WithArgs("job-1", domain.ReminderJobRunning, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		(*mock).ExpectExec(`UPDATE reminder_jobs`).
			WithArgs("job-2", domain.ReminderJobRunning, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		(*mock).ExpectCommit()

		jobs, err := repo.ClaimDueJobs(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, domain.ReminderJobRunning, jobs[0].Status)
		assert.Equal(t, domain.ReminderJobRunning, jobs[1].Status)
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("reclaims running job with expired claim timeout", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		// A worker claimed this job and died before finishing; the row
		// is stuck in running with its claim timeout in the past.
		now := time.Now().UTC()
		expired := now.Add(-time.Minute)
		rows := sqlmock.NewRows(reminderJobRowColumns).
			AddRow("job-1", "task-1", now, "", domain.ReminderJobRunning, domain.CheckpointNone,
				nil, expired, 0, 3, nil, now.Add(-10*time.Minute), now.Add(-10*time.Minute), nil)

		(*mock).ExpectBegin()
		(*mock).ExpectQuery(`SELECT (.+) FOR UPDATE SKIP LOCKED`).
			WithArgs(domain.ReminderJobPending, sqlmock.AnyArg(), domain.ReminderJobRunning, 10).
			WillReturnRows(rows)
		(*mock).ExpectExec(`UPDATE reminder_jobs`).
			WithArgs("job-1", domain.ReminderJobRunning, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		(*mock).ExpectCommit()

		jobs, err := repo.ClaimDueJobs(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "job-1", jobs[0].ID)
		assert.Equal(t, domain.ReminderJobRunning, jobs[0].Status)
		require.NotNil(t, jobs[0].TimeoutAfter)
		assert.True(t, jobs[0].TimeoutAfter.After(now), "reclaim must refresh the claim timeout")
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("no due jobs commits empty", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		(*mock).ExpectBegin()
		(*mock).ExpectQuery(`SELECT (.+) FOR UPDATE SKIP LOCKED`).
			WithArgs(domain.ReminderJobPending, sqlmock.AnyArg(), domain.ReminderJobRunning, 10).
			WillReturnRows(sqlmock.NewRows(reminderJobRowColumns))
		(*mock).ExpectCommit()

		jobs, err := repo.ClaimDueJobs(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, jobs)
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestReminderJobRepository_SetCheckpoint(t *testing.T) {
	mock, repo, cleanup := setupReminderJobTest(t)
	defer cleanup()

	(*mock).ExpectExec(`UPDATE reminder_jobs`).
		WithArgs("job-1", domain.CheckpointNotified, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCheckpoint(context.Background(), "job-1", domain.CheckpointNotified))
	assert.NoError(t, (*mock).ExpectationsWereMet())
}

func TestReminderJobRepository_ScheduleWake(t *testing.T) {
	mock, repo, cleanup := setupReminderJobTest(t)
	defer cleanup()

	wakeAt := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	(*mock).ExpectExec(`UPDATE reminder_jobs`).
		WithArgs("job-1", domain.ReminderJobPending, wakeAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ScheduleWake(context.Background(), "job-1", wakeAt))
	assert.NoError(t, (*mock).ExpectationsWereMet())
}

func TestReminderJobRepository_MarkCompleted(t *testing.T) {
	t.Run("records final checkpoint", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		(*mock).ExpectExec(`UPDATE reminder_jobs`).
			WithArgs("job-1", domain.ReminderJobCompleted, domain.CheckpointReminded, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkCompleted(context.Background(), "job-1", domain.CheckpointReminded))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("unknown job is not found", func(t *testing.T) {
		mock, repo, cleanup := setupReminderJobTest(t)
		defer cleanup()

		(*mock).ExpectExec(`UPDATE reminder_jobs`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkCompleted(context.Background(), "job-gone", domain.CheckpointReminded)
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestReminderJobRepository_RescheduleRetry(t *testing.T) {
	mock, repo, cleanup := setupReminderJobTest(t)
	defer cleanup()

	nextRun := time.Now().UTC().Add(time.Minute)

	(*mock).ExpectExec(`UPDATE reminder_jobs`).
		WithArgs("job-1", domain.ReminderJobPending, nextRun, "smtp timeout", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RescheduleRetry(context.Background(), "job-1", nextRun, "smtp timeout"))
	assert.NoError(t, (*mock).ExpectationsWereMet())
}
