package mailer

import (
	"fmt"
	"log"
	"time"

	"github.com/wneessen/go-mail"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=pkgmocks github.com/Planora/planora/pkg/mailer Mailer

// Mailer is the interface for sending notification emails
type Mailer interface {
	// SendTaskAssigned sends the assignment email to the assignee of a new task
	SendTaskAssigned(email TaskEmail) error
	// SendTaskReminder sends the due-date reminder for a task that is not done yet
	SendTaskReminder(email TaskEmail) error
}

// TaskEmail carries everything the task notification templates need
type TaskEmail struct {
	To           string
	AssigneeName string
	ProjectName  string
	TaskTitle    string
	DueDate      time.Time
	Origin       string
}

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	// Delivery retry policy. Email delivery is a blocking external call;
	// transient failures get MaxRetries attempts with doubling backoff.
	MaxRetries   int
	RetryBackoff time.Duration
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config) *SMTPMailer {
	applyRetryDefaults(config)
	return &SMTPMailer{
		config:   config,
		testMode: false,
	}
}

// NewTestSMTPMailer creates a new SMTP mailer in test mode (won't connect to an SMTP server)
func NewTestSMTPMailer(config *Config) *SMTPMailer {
	applyRetryDefaults(config)
	return &SMTPMailer{
		config:   config,
		testMode: true,
	}
}

func applyRetryDefaults(config *Config) {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}
}

// SendTaskAssigned sends the assignment email to the assignee of a new task
func (m *SMTPMailer) SendTaskAssigned(email TaskEmail) error {
	subject := fmt.Sprintf("New task assigned: %s", email.TaskTitle)
	dueDate := email.DueDate.Format("Monday, Jan 2, 2006")

	htmlBody := fmt.Sprintf(`
	<html>
		<body>
			<h1>You have a new task</h1>
			<p>Hi %s,</p>
			<p>You've been assigned the task <strong>%s</strong> in project <strong>%s</strong>.</p>
			<p>Due date: <strong>%s</strong></p>
			<p><a href="%s">Open the task board</a></p>
			<p>Thanks,<br>The Planora Team</p>
		</body>
	</html>`, email.AssigneeName, email.TaskTitle, email.ProjectName, dueDate, email.Origin)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\nYou've been assigned the task %q in project %s.\n\n"+
			"Due date: %s\n\n"+
			"Open the task board: %s\n\n"+
			"Thanks,\nThe Planora Team",
		email.AssigneeName, email.TaskTitle, email.ProjectName, dueDate, email.Origin)

	return m.send(email.To, subject, htmlBody, plainBody)
}

// SendTaskReminder sends the due-date reminder for a task that is not done yet
func (m *SMTPMailer) SendTaskReminder(email TaskEmail) error {
	subject := fmt.Sprintf("Reminder: %s is due today", email.TaskTitle)
	dueDate := email.DueDate.Format("Monday, Jan 2, 2006")

	htmlBody := fmt.Sprintf(`
	<html>
		<body>
			<h1>Task due today</h1>
			<p>Hi %s,</p>
			<p>The task <strong>%s</strong> in project <strong>%s</strong> is due on %s and is not completed yet.</p>
			<p><a href="%s">Open the task board</a></p>
			<p>Thanks,<br>The Planora Team</p>
		</body>
	</html>`, email.AssigneeName, email.TaskTitle, email.ProjectName, dueDate, email.Origin)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\nThe task %q in project %s is due on %s and is not completed yet.\n\n"+
			"Open the task board: %s\n\n"+
			"Thanks,\nThe Planora Team",
		email.AssigneeName, email.TaskTitle, email.ProjectName, dueDate, email.Origin)

	return m.send(email.To, subject, htmlBody, plainBody)
}

// send builds the message and delivers it with bounded retries
func (m *SMTPMailer) send(to, subject, htmlBody, plainBody string) error {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set email from address: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	msg.AddAlternativeString(mail.TypeTextPlain, plainBody)

	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}

	// For testing - log information if client is nil
	if client == nil {
		log.Printf("Sending email to: %s", to)
		log.Printf("From: %s <%s>", m.config.FromName, m.config.FromEmail)
		log.Printf("Subject: %s", subject)
		return nil
	}

	backoff := m.config.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= m.config.MaxRetries; attempt++ {
		if err := client.DialAndSend(msg); err != nil {
			lastErr = err
			if attempt < m.config.MaxRetries {
				time.Sleep(backoff)
				backoff *= 2
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", m.config.MaxRetries, lastErr)
}

// createSMTPClient creates and configures a new SMTP client
func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	// In test mode, return nil client to avoid SMTP connections
	if m.testMode {
		return nil, nil
	}

	clientOptions := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}

	// Only add authentication if username and password are provided
	// This allows for unauthenticated SMTP servers (e.g., local relays, port 25)
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		clientOptions = append(clientOptions,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client, nil
}

// ConsoleMailer is a development implementation that just logs emails
type ConsoleMailer struct{}

// NewConsoleMailer creates a new console mailer for development
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// SendTaskAssigned logs the assignment email details to console
func (m *ConsoleMailer) SendTaskAssigned(email TaskEmail) error {
	fmt.Println("==============================================================")
	fmt.Println("                   TASK ASSIGNMENT EMAIL                      ")
	fmt.Println("==============================================================")
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: New task assigned: %s\n\n", email.TaskTitle)
	fmt.Printf("Hi %s,\n\n", email.AssigneeName)
	fmt.Printf("You've been assigned the task %q in project %s.\n", email.TaskTitle, email.ProjectName)
	fmt.Printf("Due date: %s\n", email.DueDate.Format("Monday, Jan 2, 2006"))
	fmt.Printf("Open the task board: %s\n", email.Origin)
	fmt.Println("==============================================================")

	return nil
}

// SendTaskReminder logs the reminder email details to console
func (m *ConsoleMailer) SendTaskReminder(email TaskEmail) error {
	fmt.Println("==============================================================")
	fmt.Println("                    TASK REMINDER EMAIL                       ")
	fmt.Println("==============================================================")
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: Reminder: %s is due today\n\n", email.TaskTitle)
	fmt.Printf("Hi %s,\n\n", email.AssigneeName)
	fmt.Printf("The task %q in project %s is due on %s and is not completed yet.\n",
		email.TaskTitle, email.ProjectName, email.DueDate.Format("Monday, Jan 2, 2006"))
	fmt.Printf("Open the task board: %s\n", email.Origin)
	fmt.Println("==============================================================")

	return nil
}
