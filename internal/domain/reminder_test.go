package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderJobWaitRequired(t *testing.T) {
	created := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name    string
		dueDate time.Time
		want    bool
	}{
		{"due next day", time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC), true},
		{"due same day later hour", time.Date(2026, 9, 10, 23, 0, 0, 0, time.UTC), false},
		{"due same day earlier hour", time.Date(2026, 9, 10, 1, 0, 0, 0, time.UTC), false},
		{"due in the past", time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), false},
		{"due far in the future", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := &ReminderJob{CreatedAt: created, DueDate: tc.dueDate}
			assert.Equal(t, tc.want, job.WaitRequired())
		})
	}
}

func TestReminderJobWaitRequiredCrossesMidnight(t *testing.T) {
	// Created just before midnight, due just after: different calendar days
	job := &ReminderJob{
		CreatedAt: time.Date(2026, 9, 10, 23, 59, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 9, 11, 0, 1, 0, 0, time.UTC),
	}
	assert.True(t, job.WaitRequired())
}

func TestReminderJobDueDay(t *testing.T) {
	job := &ReminderJob{DueDate: time.Date(2026, 9, 15, 18, 45, 12, 0, time.UTC)}
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), job.DueDay())
}
