package usecase

import (
	"context"
	"errors"

	"velocity/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrAlertInactive = errors.New("alert is not active")
)

// AlertTrigger runs a single alert check on demand, bypassing the scheduler
// and the queue. Operational tooling uses it; the scheduled path never does.
type AlertTrigger struct {
	alerts    repository.AlertRepository
	processor *AlertProcessor
}

func NewAlertTrigger(alerts repository.AlertRepository, processor *AlertProcessor) *AlertTrigger {
	return &AlertTrigger{alerts: alerts, processor: processor}
}

func (t *AlertTrigger) Trigger(ctx context.Context, alertID uuid.UUID) (ProcessResult, error) {
	a, err := t.alerts.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			return ProcessResult{}, ErrAlertNotFound
		}
		return ProcessResult{}, err
	}
	if !a.IsActive {
		return ProcessResult{}, ErrAlertInactive
	}

	return t.processor.Process(ctx, a.Task())
}
