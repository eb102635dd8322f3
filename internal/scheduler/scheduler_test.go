package scheduler

import (
	"context"
	"testing"

	"velocity/internal/config"
	"velocity/internal/domain/alert"

	"github.com/google/uuid"
)

type stubAlerts struct {
	active []alert.Alert
	err    error
}

func (s *stubAlerts) Create(context.Context, *alert.Alert) error { return nil }
func (s *stubAlerts) FindByID(context.Context, uuid.UUID) (alert.Alert, error) {
	return alert.Alert{}, nil
}
func (s *stubAlerts) ListByUser(context.Context, uuid.UUID) ([]alert.Alert, error) { return nil, nil }
func (s *stubAlerts) ListActive(context.Context) ([]alert.Alert, error)            { return s.active, s.err }
func (s *stubAlerts) Update(context.Context, *alert.Alert) error                   { return nil }
func (s *stubAlerts) SetActive(context.Context, uuid.UUID, bool) error             { return nil }
func (s *stubAlerts) UpdateStats(context.Context, uuid.UUID, alert.StatsUpdate) error {
	return nil
}

type stubDispatcher struct {
	batches [][]alert.CheckTask
	accept  bool
}

func (d *stubDispatcher) Enqueue(_ context.Context, tasks []alert.CheckTask) bool {
	d.batches = append(d.batches, tasks)
	return d.accept
}

func activeAlerts(n int) []alert.Alert {
	out := make([]alert.Alert, n)
	for i := range out {
		out[i] = alert.Alert{ID: uuid.New(), UserEmail: "dev@example.com", IsActive: true}
	}
	return out
}

func TestRunCycle_PrefersPrimaryDispatcher(t *testing.T) {
	primary := &stubDispatcher{accept: true}
	fallback := &stubDispatcher{accept: true}
	s := New(&stubAlerts{active: activeAlerts(2)}, primary, fallback, config.AlertsConfig{}, nil)

	s.runCycle(context.Background())

	if len(primary.batches) != 1 {
		t.Fatalf("expected 1 primary batch, got %d", len(primary.batches))
	}
	if len(primary.batches[0]) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(primary.batches[0]))
	}
	if len(fallback.batches) != 0 {
		t.Fatalf("fallback must not run when primary accepts")
	}
}

func TestRunCycle_FallsBackWhenPrimaryRejects(t *testing.T) {
	primary := &stubDispatcher{accept: false}
	fallback := &stubDispatcher{accept: true}
	s := New(&stubAlerts{active: activeAlerts(1)}, primary, fallback, config.AlertsConfig{}, nil)

	s.runCycle(context.Background())

	if len(fallback.batches) != 1 {
		t.Fatalf("expected fallback batch, got %d", len(fallback.batches))
	}
}

func TestRunCycle_FallsBackWithoutPrimary(t *testing.T) {
	fallback := &stubDispatcher{accept: true}
	s := New(&stubAlerts{active: activeAlerts(1)}, nil, fallback, config.AlertsConfig{}, nil)

	s.runCycle(context.Background())

	if len(fallback.batches) != 1 {
		t.Fatalf("expected fallback batch without a primary, got %d", len(fallback.batches))
	}
}

func TestRunCycle_NoActiveAlerts(t *testing.T) {
	primary := &stubDispatcher{accept: true}
	s := New(&stubAlerts{}, primary, &stubDispatcher{accept: true}, config.AlertsConfig{}, nil)

	s.runCycle(context.Background())

	if len(primary.batches) != 0 {
		t.Fatalf("nothing to dispatch, got %d batches", len(primary.batches))
	}
}

func TestStart_RejectsBadCronSpec(t *testing.T) {
	s := New(&stubAlerts{}, nil, &stubDispatcher{accept: true}, config.AlertsConfig{CronSchedule: "not a cron"}, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
