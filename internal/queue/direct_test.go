package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"velocity/internal/domain/alert"
	"velocity/internal/usecase"

	"github.com/google/uuid"
)

type recordingProcessor struct {
	processed []uuid.UUID
	err       error
}

func (p *recordingProcessor) Process(_ context.Context, t alert.CheckTask) (usecase.ProcessResult, error) {
	p.processed = append(p.processed, t.AlertID)
	return usecase.ProcessResult{Success: p.err == nil}, p.err
}

func tasks(n int) []alert.CheckTask {
	out := make([]alert.CheckTask, n)
	for i := range out {
		out[i] = alert.CheckTask{AlertID: uuid.New(), UserEmail: "dev@example.com"}
	}
	return out
}

func TestDirectDispatcher_ProcessesSequentially(t *testing.T) {
	proc := &recordingProcessor{}
	d := NewDirectDispatcher(proc, usecase.NewCircuitBreaker(nil, nil, nil), time.Millisecond, nil)

	batch := tasks(3)
	if !d.Enqueue(context.Background(), batch) {
		t.Fatalf("direct dispatch must accept the batch")
	}
	if len(proc.processed) != 3 {
		t.Fatalf("expected 3 processed, got %d", len(proc.processed))
	}
	for i, id := range proc.processed {
		if id != batch[i].AlertID {
			t.Fatalf("task %d processed out of order", i)
		}
	}
}

func TestDirectDispatcher_ContinuesPastFailures(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("boom")}
	d := NewDirectDispatcher(proc, usecase.NewCircuitBreaker(nil, nil, nil), time.Millisecond, nil)

	if !d.Enqueue(context.Background(), tasks(2)) {
		t.Fatalf("direct dispatch must accept the batch")
	}
	if len(proc.processed) != 2 {
		t.Fatalf("a failed run must not stop the batch, processed %d", len(proc.processed))
	}
}

func TestDirectDispatcher_SkipsWhilePaused(t *testing.T) {
	proc := &recordingProcessor{}
	breaker := usecase.NewCircuitBreaker(nil, nil, nil)
	for i := 0; i < usecase.BreakerThreshold; i++ {
		breaker.RecordFailure()
	}
	d := NewDirectDispatcher(proc, breaker, time.Millisecond, nil)

	if !d.Enqueue(context.Background(), tasks(3)) {
		t.Fatalf("paused dispatch still owns the batch")
	}
	if len(proc.processed) != 0 {
		t.Fatalf("paused breaker must skip processing, got %d", len(proc.processed))
	}
}

func TestDirectDispatcher_StopsOnCanceledContext(t *testing.T) {
	proc := &recordingProcessor{}
	d := NewDirectDispatcher(proc, usecase.NewCircuitBreaker(nil, nil, nil), time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if !d.Enqueue(ctx, tasks(3)) {
		t.Fatalf("canceled dispatch still owns the batch")
	}
	if len(proc.processed) != 0 {
		t.Fatalf("canceled context must stop processing, got %d", len(proc.processed))
	}
}
