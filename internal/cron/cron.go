// Package cron runs background jobs on a fixed schedule.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/conorfennell/kapp/internal/logger"
	ksync "github.com/conorfennell/kapp/internal/sync"
)

// SyncRunner re-imports all deck sources.
type SyncRunner interface {
	RunSync(ctx context.Context) ([]ksync.Report, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       *logger.Logger
	timeout   time.Duration
}

// New creates a scheduler whose jobs never overlap with themselves and
// first fire one interval after Start.
func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	s.WaitForScheduleAll()
	return &Scheduler{scheduler: s, log: log, timeout: 10 * time.Minute}
}

// ScheduleSync runs a full source sync every interval.
func (s *Scheduler) ScheduleSync(interval time.Duration, runner SyncRunner) error {
	if interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", interval)
	}
	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		reports, err := runner.RunSync(ctx)
		if err != nil {
			s.log.Error("Scheduled sync failed", "error", err)
			return
		}
		s.log.Info("Scheduled sync finished", "sources", len(reports), "duration_ms", time.Since(start).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}
	s.log.Info("Scheduled periodic sync", "interval", interval.String())
	return nil
}

// Start begins running all scheduled tasks without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
