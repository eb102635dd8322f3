package queue

import (
	"context"
	"log"
	"time"

	"velocity/internal/domain/alert"
	"velocity/internal/usecase"
)

// DirectDispatcher processes alerts sequentially in the calling goroutine
// with a fixed inter-alert delay approximating the queue's rate ceiling.
// It is the fallback when Redis is unavailable.
type DirectDispatcher struct {
	proc    Processor
	breaker *usecase.CircuitBreaker
	delay   time.Duration
	logger  *log.Logger
}

func NewDirectDispatcher(proc Processor, breaker *usecase.CircuitBreaker, delay time.Duration, logger *log.Logger) *DirectDispatcher {
	if delay <= 0 {
		delay = 5 * time.Second
	}
	return &DirectDispatcher{proc: proc, breaker: breaker, delay: delay, logger: logger}
}

func (d *DirectDispatcher) Enqueue(ctx context.Context, tasks []alert.CheckTask) bool {
	if d == nil || d.proc == nil {
		return false
	}

	for i, t := range tasks {
		if ctx.Err() != nil {
			return true
		}
		if d.breaker.Paused() {
			d.logf("[Queue] Breaker open, skipping remaining %d alert(s)", len(tasks)-i)
			return true
		}

		if _, err := d.proc.Process(ctx, t); err != nil {
			// Without a durable queue there is no retry; the next scheduled
			// cycle picks the alert up again.
			d.logf("[Queue] Direct run for alert %s failed: %v", t.AlertID, err)
		}

		if i < len(tasks)-1 {
			select {
			case <-ctx.Done():
				return true
			case <-time.After(d.delay):
			}
		}
	}
	return true
}

func (d *DirectDispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

var _ Dispatcher = (*DirectDispatcher)(nil)
var _ Dispatcher = (*AsynqDispatcher)(nil)
