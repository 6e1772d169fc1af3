package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Planora/planora/config"
	"github.com/Planora/planora/internal/database"
	"github.com/Planora/planora/internal/domain"
	apphttp "github.com/Planora/planora/internal/http"
	"github.com/Planora/planora/internal/http/middleware"
	"github.com/Planora/planora/internal/repository"
	"github.com/Planora/planora/internal/service"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/mailer"
)

// App assembles the whole service: database, repositories, services,
// handlers, the notification workflow and its scheduler.
type App struct {
	config   *config.Config
	logger   logger.Logger
	db       *sql.DB
	mailer   mailer.Mailer
	eventBus domain.EventBus
	mux      *http.ServeMux
	server   *http.Server

	// Repositories
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
	projectRepo   domain.ProjectRepository
	taskRepo      domain.TaskRepository
	commentRepo   domain.CommentRepository
	jobRepo       domain.ReminderJobRepository

	// Services
	workspaceService    *service.WorkspaceService
	projectService      *service.ProjectService
	taskService         *service.TaskService
	commentService      *service.CommentService
	identitySyncService *service.IdentitySyncService
	notificationService *service.NotificationService
	reminderScheduler   *service.ReminderScheduler
}

// AppOption configures the App during construction
type AppOption func(*App)

// WithLogger sets a custom logger
func WithLogger(l logger.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// WithMailer sets a custom mailer, used by tests to avoid SMTP
func WithMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	a := &App{
		config:   cfg,
		eventBus: domain.NewInMemoryEventBus(),
		mux:      http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logger.NewLoggerWithLevel(cfg.LogLevel)
	}

	return a
}

// InitDB connects to Postgres and ensures the schema exists
func (a *App) InitDB() error {
	db, err := database.Connect(&a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.db = db
	a.logger.WithField("database", a.config.Database.DBName).Info("Connected to database")
	return nil
}

// InitMailer picks the SMTP mailer, or the console mailer in development
// when no SMTP host is configured
func (a *App) InitMailer() error {
	if a.mailer != nil {
		return nil
	}

	if a.config.SMTP.Host == "" && a.config.IsDevelopment() {
		a.mailer = mailer.NewConsoleMailer()
		a.logger.Info("No SMTP host configured, emails go to the console")
		return nil
	}

	a.mailer = mailer.NewSMTPMailer(&mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
	})
	return nil
}

// InitRepositories creates all repository instances
func (a *App) InitRepositories() error {
	a.userRepo = repository.NewUserRepository(a.db)
	a.workspaceRepo = repository.NewWorkspaceRepository(a.db)
	a.projectRepo = repository.NewProjectRepository(a.db)
	a.taskRepo = repository.NewTaskRepository(a.db)
	a.commentRepo = repository.NewCommentRepository(a.db)
	a.jobRepo = repository.NewReminderJobRepository(a.db)
	return nil
}

// InitServices creates all services and wires the notification workflow
// to the event bus and its scheduler
func (a *App) InitServices() error {
	a.workspaceService = service.NewWorkspaceService(
		a.workspaceRepo, a.projectRepo, a.taskRepo, a.userRepo, a.logger)
	a.projectService = service.NewProjectService(
		a.projectRepo, a.workspaceRepo, a.userRepo, a.logger)
	a.taskService = service.NewTaskService(
		a.taskRepo, a.projectRepo, a.eventBus, a.logger)
	a.commentService = service.NewCommentService(
		a.commentRepo, a.taskRepo, a.projectRepo, a.userRepo, a.logger)
	a.identitySyncService = service.NewIdentitySyncService(
		a.userRepo, a.workspaceRepo, a.logger)
	a.notificationService = service.NewNotificationService(
		a.jobRepo, a.taskRepo, a.projectRepo, a.mailer, a.eventBus, a.logger)
	a.reminderScheduler = service.NewReminderScheduler(
		a.notificationService, a.logger,
		a.config.Scheduler.PollInterval, a.config.Scheduler.BatchSize)
	return nil
}

// InitHandlers registers all HTTP routes
func (a *App) InitHandlers() error {
	auth := middleware.NewAuthMiddleware(a.config.Security.JWTSecret, a.logger)

	apphttp.NewRootHandler(a.config.Version, a.config.Environment, a.logger).
		RegisterRoutes(a.mux)
	apphttp.NewWorkspaceHandler(a.workspaceService, a.logger).
		RegisterRoutes(a.mux, auth)
	apphttp.NewProjectHandler(a.projectService, a.logger).
		RegisterRoutes(a.mux, auth)
	apphttp.NewTaskHandler(a.taskService, a.logger).
		RegisterRoutes(a.mux, auth)
	apphttp.NewCommentHandler(a.commentService, a.logger).
		RegisterRoutes(a.mux, auth)
	apphttp.NewIdentityWebhookHandler(
		a.identitySyncService, a.config.Security.WebhookSigningSecret, a.logger).
		RegisterRoutes(a.mux)

	return nil
}

// Initialize runs all init steps in order
func (a *App) Initialize() error {
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitMailer(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	return a.InitHandlers()
}

// Start launches the reminder scheduler and the HTTP server. Blocks
// until the server stops.
func (a *App) Start() error {
	a.reminderScheduler.Start(context.Background())

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.WithField("addr", addr).Info("HTTP server listening")

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the scheduler, drains the HTTP server and closes the
// database pool
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down")

	if a.reminderScheduler != nil {
		a.reminderScheduler.Stop()
	}

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP server shutdown error: " + err.Error())
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

// GetMux exposes the router, used by HTTP tests
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetLogger returns the application logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}
