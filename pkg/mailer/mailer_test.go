package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskEmailFixture() TaskEmail {
	return TaskEmail{
		To:           "dev@example.com",
		AssigneeName: "Dev",
		ProjectName:  "Apollo",
		TaskTitle:    "Write migration",
		DueDate:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Origin:       "https://app.example.com",
	}
}

func TestNewSMTPMailerAppliesRetryDefaults(t *testing.T) {
	config := &Config{SMTPHost: "smtp.example.com", SMTPPort: 587}
	NewSMTPMailer(config)

	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.RetryBackoff)
}

func TestNewSMTPMailerKeepsExplicitRetryPolicy(t *testing.T) {
	config := &Config{MaxRetries: 5, RetryBackoff: 2 * time.Second}
	NewSMTPMailer(config)

	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 2*time.Second, config.RetryBackoff)
}

func TestTestModeMailerDoesNotDial(t *testing.T) {
	mailer := NewTestSMTPMailer(&Config{
		FromEmail: "noreply@example.com",
		FromName:  "Planora",
	})

	require.NoError(t, mailer.SendTaskAssigned(taskEmailFixture()))
	require.NoError(t, mailer.SendTaskReminder(taskEmailFixture()))
}

func TestTestModeMailerRejectsBadAddresses(t *testing.T) {
	mailer := NewTestSMTPMailer(&Config{
		FromEmail: "noreply@example.com",
		FromName:  "Planora",
	})

	email := taskEmailFixture()
	email.To = "not an address"

	assert.Error(t, mailer.SendTaskAssigned(email))
}

func TestConsoleMailer(t *testing.T) {
	mailer := NewConsoleMailer()
	require.NoError(t, mailer.SendTaskAssigned(taskEmailFixture()))
	require.NoError(t, mailer.SendTaskReminder(taskEmailFixture()))
}
