// Package scheduler fires the periodic alert check and hands the active
// alerts to the queue layer.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"velocity/internal/config"
	"velocity/internal/domain/alert"
	"velocity/internal/queue"
	"velocity/internal/repository"

	"github.com/robfig/cron/v3"
)

const testInterval = 10 * time.Second

// Scheduler wraps robfig/cron and triggers one check cycle per tick. When
// the test-interval flag is set it runs on a 10s ticker instead, with an
// immediate first cycle.
type Scheduler struct {
	cron     *cron.Cron
	alerts   repository.AlertRepository
	primary  queue.Dispatcher // durable queue; nil when Redis is unavailable
	fallback queue.Dispatcher
	cfg      config.AlertsConfig
	logger   *log.Logger

	cancel context.CancelFunc
}

func New(alerts repository.AlertRepository, primary, fallback queue.Dispatcher, cfg config.AlertsConfig, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		alerts:   alerts,
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.cfg.TestInterval {
		s.logf("[Scheduler] TESTING MODE: checking alerts every %s", testInterval)
		go s.runTicker(ctx)
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, func() {
		s.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.cfg.CronSchedule, err)
	}

	s.cron.Start()
	s.logf("[Scheduler] Alert check scheduled: %s", s.cfg.CronSchedule)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logf("[Scheduler] Stopped")
}

func (s *Scheduler) runTicker(ctx context.Context) {
	// Immediate first cycle so testing doesn't wait for the first tick.
	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(testInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.logf("[Scheduler] Alert check cycle started")

	active, err := s.alerts.ListActive(ctx)
	if err != nil {
		s.logf("[Scheduler] ListActive error: %v", err)
		return
	}
	if len(active) == 0 {
		s.logf("[Scheduler] No active alerts to process")
		return
	}

	tasks := make([]alert.CheckTask, 0, len(active))
	for _, a := range active {
		tasks = append(tasks, a.Task())
	}
	s.logf("[Scheduler] Found %d active alert(s)", len(tasks))

	if s.primary != nil && s.primary.Enqueue(ctx, tasks) {
		return
	}

	s.logf("[Scheduler] Queue unavailable, processing alerts directly")
	s.fallback.Enqueue(ctx, tasks)
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
