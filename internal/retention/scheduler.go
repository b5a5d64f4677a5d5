// Package retention purges archived exports older than a configured age on a
// cron schedule.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"csvexport/internal/config"
	"csvexport/internal/logging"
)

// Purger deletes every export created before cutoff.
// service.ExportService satisfies it.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

// Scheduler runs Purge at scheduled intervals using standard cron syntax.
type Scheduler struct {
	purger  Purger
	cfg     config.RetentionConfig
	cron    *cron.Cron
	logger  *logging.Logger
	now     func() time.Time
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new retention scheduler. Cron times are evaluated in
// the logger's location.
func NewScheduler(purger Purger, cfg config.RetentionConfig, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		purger: purger,
		cfg:    cfg,
		cron:   cron.New(cron.WithLocation(logger.Location())),
		logger: logger,
		now:    time.Now,
	}
}

// Start schedules purging. An empty schedule leaves the scheduler idle.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//
// The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler", map[string]any{
			"component": "retention",
		})
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule purge: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started", map[string]any{
		"component": "retention",
		"schedule":  s.cfg.Schedule,
		"max_age":   s.cfg.MaxAge.String(),
	})

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce purges everything older than MaxAge and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	cutoff := s.now().Add(-s.cfg.MaxAge)

	deleted, err := s.purger.Purge(ctx, cutoff)
	fields := map[string]any{
		"component":     "retention",
		"event":         "retention_purge",
		"cutoff":        cutoff.In(s.logger.Location()).Format(time.RFC3339),
		"deleted_count": deleted,
		"duration_ms":   time.Since(start).Milliseconds(),
	}
	if err != nil {
		s.logger.Error("scheduled purge failed", err, fields)
		return deleted, err
	}
	s.logger.Info("scheduled purge completed", fields)
	return deleted, nil
}

// Stop stops the scheduler and waits for a running purge to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped", map[string]any{"component": "retention"})
	}
}

// IsRunning reports whether a schedule is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled purge time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
