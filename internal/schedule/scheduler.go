// Package schedule runs silent cleans on a cron schedule. It pairs a
// cron-driven scheduler with a profile file watcher so long-running
// daemons pick up profile edits without restarting, and carries the
// PID-file daemon plumbing the schedule command uses to background
// itself.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateSpec checks a standard five-field cron spec without
// constructing a scheduler. The schedule command uses it to reject a
// bad spec before daemonizing.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler fires a job on a cron schedule.
type Scheduler struct {
	spec    string
	job     func(context.Context)
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// New creates a scheduler that runs job per the standard five-field
// cron spec. A nil logger falls back to slog.Default.
func New(spec string, job func(context.Context), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		spec:   spec,
		job:    job,
		cron:   cron.New(),
		logger: logger.With("component", "scheduler"),
	}
}

// Start validates the cron spec and begins firing the job.
// The scheduler stops itself when ctx is cancelled.
//
// Common cron expressions:
//   - "0 3 * * *"   - daily at 3 AM
//   - "0 */6 * * *" - every 6 hours
//   - "30 2 * * 0"  - weekly on Sunday at 02:30
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if err := ValidateSpec(s.spec); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule clean: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("clean scheduler started", "schedule", s.spec)

	// Stop with the surrounding context.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runJob executes one scheduled clean cycle.
func (s *Scheduler) runJob(ctx context.Context) {
	s.logger.Info("starting scheduled clean")

	start := time.Now()
	s.job(ctx)

	s.logger.Info("scheduled clean finished", "took", time.Since(start).Round(time.Millisecond).String())
}

// Stop halts the schedule and waits for a running job to complete.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("clean scheduler stopped")
	}
}

// IsRunning reports whether the scheduler has been started and not yet
// stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled clean time, or nil when nothing
// is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
