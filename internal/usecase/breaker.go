package usecase

import (
	"log"
	"sync"
	"time"
)

// Circuit breaker tuning. The upstream quota is shared across every alert,
// so these are process-wide constants rather than per-alert configuration.
const (
	BreakerThreshold = 5
	BreakerCooldown  = time.Hour
)

// CircuitBreaker counts consecutive upstream rate-limit failures across all
// alert runs. Reaching the threshold pauses dispatch (via the pause hook)
// and schedules an automatic resume after the cooldown. Any success resets
// the counter.
type CircuitBreaker struct {
	mu          sync.Mutex
	consecutive int
	paused      bool

	threshold int
	cooldown  time.Duration

	pause    func()
	resume   func()
	schedule func(d time.Duration, f func())
	logger   *log.Logger
}

// NewCircuitBreaker wires the breaker to the queue layer's pause/resume
// hooks. Either hook may be nil.
func NewCircuitBreaker(pause, resume func(), logger *log.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: BreakerThreshold,
		cooldown:  BreakerCooldown,
		pause:     pause,
		resume:    resume,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: logger,
	}
}

// RecordFailure notes one rate-limit failure. Crossing the threshold trips
// the breaker exactly once per pause window.
func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive++
	if b.paused || b.consecutive < b.threshold {
		return
	}

	b.paused = true
	if b.logger != nil {
		b.logger.Printf("[Breaker] %d consecutive rate-limit failures, pausing alert dispatch for %s",
			b.consecutive, b.cooldown)
	}
	if b.pause != nil {
		b.pause()
	}
	b.schedule(b.cooldown, b.autoResume)
}

// RecordSuccess resets the consecutive failure counter.
func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.consecutive = 0
	b.mu.Unlock()
}

// Paused reports whether dispatch is currently suspended.
func (b *CircuitBreaker) Paused() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *CircuitBreaker) autoResume() {
	b.mu.Lock()
	b.paused = false
	b.consecutive = 0
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Printf("[Breaker] Cooldown elapsed, resuming alert dispatch")
	}
	if b.resume != nil {
		b.resume()
	}
}
