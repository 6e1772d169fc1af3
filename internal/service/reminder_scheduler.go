package service

import (
	"context"
	"sync"
	"time"

	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// JobProcessor defines the interface for processing due reminder jobs
type JobProcessor interface {
	ProcessDueJobs(ctx context.Context, limit int) (int, error)
}

// ReminderScheduler polls the reminder job queue on a fixed interval.
// It is what wakes jobs parked on their due date.
type ReminderScheduler struct {
	processor   JobProcessor
	logger      logger.Logger
	interval    time.Duration
	batchSize   int
	stopChan    chan struct{}
	stoppedChan chan struct{}
	mu          sync.Mutex
	running     bool
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(
	processor JobProcessor,
	logger logger.Logger,
	interval time.Duration,
	batchSize int,
) *ReminderScheduler {
	return &ReminderScheduler{
		processor:   processor,
		logger:      logger,
		interval:    interval,
		batchSize:   batchSize,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start begins the polling loop
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Reminder scheduler already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.WithField("interval", s.interval.String()).
		WithField("batch_size", s.batchSize).
		Info("Starting reminder scheduler")

	go s.run(ctx)
}

// Stop gracefully stops the scheduler
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping reminder scheduler...")
	close(s.stopChan)

	select {
	case <-s.stoppedChan:
		s.logger.Info("Reminder scheduler stopped")
	case <-time.After(5 * time.Second):
		s.logger.Warn("Reminder scheduler stop timeout exceeded")
	}
}

func (s *ReminderScheduler) run(ctx context.Context) {
	defer close(s.stoppedChan)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Process immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Reminder scheduler received stop signal")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	tickCtx, span := tracing.StartServiceSpan(ctx, "ReminderScheduler", "tick")
	defer tracing.EndSpan(span, nil)

	processed, err := s.processor.ProcessDueJobs(tickCtx, s.batchSize)
	if err != nil {
		s.logger.Error("Failed to process due reminder jobs: " + err.Error())
		return
	}
	if processed > 0 {
		s.logger.WithField("processed", processed).Debug("Processed due reminder jobs")
	}
}
