package usecase

import (
	"context"
	"errors"
	"strings"

	"velocity/internal/domain/alert"
	"velocity/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// AlertRegistry owns user-facing alert management. The processing pipeline
// only reads alerts and bumps their stats; creation and edits come through
// here.
type AlertRegistry struct {
	alerts repository.AlertRepository
}

func NewAlertRegistry(alerts repository.AlertRepository) *AlertRegistry {
	return &AlertRegistry{alerts: alerts}
}

type AlertInput struct {
	Title           string
	Keywords        []string
	Location        string
	RemoteOnly      bool
	EmploymentTypes []string
	UserName        string
}

func (r *AlertRegistry) Create(ctx context.Context, userID uuid.UUID, userEmail string, in AlertInput) (alert.Alert, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return alert.Alert{}, ErrInvalidInput
	}
	if strings.TrimSpace(userEmail) == "" {
		return alert.Alert{}, ErrInvalidInput
	}

	a := alert.Alert{
		UserID:          userID,
		UserEmail:       strings.TrimSpace(userEmail),
		UserName:        strings.TrimSpace(in.UserName),
		Title:           title,
		Keywords:        cleanList(in.Keywords),
		Location:        strings.TrimSpace(in.Location),
		RemoteOnly:      in.RemoteOnly,
		EmploymentTypes: cleanList(in.EmploymentTypes),
		IsActive:        true,
	}
	if err := r.alerts.Create(ctx, &a); err != nil {
		return alert.Alert{}, err
	}
	return a, nil
}

func (r *AlertRegistry) List(ctx context.Context, userID uuid.UUID) ([]alert.Alert, error) {
	return r.alerts.ListByUser(ctx, userID)
}

func (r *AlertRegistry) Get(ctx context.Context, userID, alertID uuid.UUID) (alert.Alert, error) {
	a, err := r.alerts.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			return alert.Alert{}, ErrAlertNotFound
		}
		return alert.Alert{}, err
	}
	// Alerts are private; someone else's id behaves like a missing one.
	if a.UserID != userID {
		return alert.Alert{}, ErrAlertNotFound
	}
	return a, nil
}

func (r *AlertRegistry) Update(ctx context.Context, userID, alertID uuid.UUID, in AlertInput, active *bool) (alert.Alert, error) {
	a, err := r.Get(ctx, userID, alertID)
	if err != nil {
		return alert.Alert{}, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		a.Title = title
	}
	if in.Keywords != nil {
		a.Keywords = cleanList(in.Keywords)
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		a.Location = loc
	}
	if in.EmploymentTypes != nil {
		a.EmploymentTypes = cleanList(in.EmploymentTypes)
	}
	a.RemoteOnly = in.RemoteOnly
	if active != nil {
		a.IsActive = *active
	}

	if err := r.alerts.Update(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			return alert.Alert{}, ErrAlertNotFound
		}
		return alert.Alert{}, err
	}
	return a, nil
}

// Deactivate turns an alert off. Alerts are never deleted; the notification
// ledger references them.
func (r *AlertRegistry) Deactivate(ctx context.Context, userID, alertID uuid.UUID) error {
	if _, err := r.Get(ctx, userID, alertID); err != nil {
		return err
	}
	if err := r.alerts.SetActive(ctx, alertID, false); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
