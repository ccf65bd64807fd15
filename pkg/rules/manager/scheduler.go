package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule.
type Scheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger.With("component", "rules.scheduler"),
	}
}

// Start schedules job using a standard 5-field cron expression or a
// descriptor such as "@every 5m". The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to add scheduled job: %w", err)
	}
	c.Start()

	s.cron = c
	s.running = true

	s.logger.Info("Scheduled rules reload", "schedule", spec, "next_run", s.nextRunLocked())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.running = false
	s.mu.Unlock()

	<-c.Stop().Done()
	s.logger.Info("Rules reload schedule stopped")
}

// IsRunning returns true if the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunLocked()
}

func (s *Scheduler) nextRunLocked() time.Time {
	if !s.running || s.cron == nil {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
