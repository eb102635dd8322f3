package usecase

import (
	"testing"
	"time"
)

func TestBreaker_TripsAtThreshold(t *testing.T) {
	pauses, resumes := 0, 0
	var scheduled func()

	b := NewCircuitBreaker(func() { pauses++ }, func() { resumes++ }, nil)
	b.schedule = func(d time.Duration, f func()) {
		if d != BreakerCooldown {
			t.Fatalf("unexpected cooldown: %s", d)
		}
		scheduled = f
	}

	for i := 0; i < BreakerThreshold-1; i++ {
		b.RecordFailure()
	}
	if b.Paused() {
		t.Fatalf("breaker tripped below threshold")
	}
	if pauses != 0 {
		t.Fatalf("pause hook fired early")
	}

	b.RecordFailure()
	if !b.Paused() {
		t.Fatalf("breaker must trip at threshold")
	}
	if pauses != 1 {
		t.Fatalf("expected one pause, got %d", pauses)
	}

	// Extra failures while paused must not re-trip.
	b.RecordFailure()
	b.RecordFailure()
	if pauses != 1 {
		t.Fatalf("breaker re-tripped while paused: %d pauses", pauses)
	}

	if scheduled == nil {
		t.Fatalf("auto-resume was not scheduled")
	}
	scheduled()
	if b.Paused() {
		t.Fatalf("breaker still paused after cooldown")
	}
	if resumes != 1 {
		t.Fatalf("expected one resume, got %d", resumes)
	}

	// Cooldown reset the counter; a fresh window needs the full threshold.
	for i := 0; i < BreakerThreshold-1; i++ {
		b.RecordFailure()
	}
	if b.Paused() {
		t.Fatalf("breaker tripped early after resume")
	}
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	b := NewCircuitBreaker(nil, nil, nil)
	b.schedule = func(time.Duration, func()) {}

	for i := 0; i < BreakerThreshold-1; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()
	b.RecordFailure()
	if b.Paused() {
		t.Fatalf("success must reset the consecutive counter")
	}
}
