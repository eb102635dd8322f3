package repository

import (
	"context"
	"errors"

	"velocity/internal/database"
	"velocity/internal/domain/alert"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAlertNotFound = errors.New("alert not found")

type AlertRepository interface {
	Create(ctx context.Context, a *alert.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (alert.Alert, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]alert.Alert, error)
	// ListActive returns every active alert with the projection the queue
	// payload needs; counters and timestamps are not loaded.
	ListActive(ctx context.Context) ([]alert.Alert, error)
	Update(ctx context.Context, a *alert.Alert) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateStats(ctx context.Context, id uuid.UUID, upd alert.StatsUpdate) error
}

type PostgresAlertRepository struct {
	db database.DB
}

func NewPostgresAlertRepository(db database.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

const alertColumns = `id, user_id, user_email, user_name, title, keywords, location,
	remote_only, employment_types, is_active, last_checked_at,
	total_jobs_found, total_emails_sent, created_at, updated_at`

func (r *PostgresAlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	if a == nil {
		return errors.New("nil alert")
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO job_alerts
			(user_id, user_email, user_name, title, keywords, location, remote_only, employment_types, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		a.UserID, a.UserEmail, a.UserName, a.Title, a.Keywords, a.Location,
		a.RemoteOnly, a.EmploymentTypes, a.IsActive,
	)
	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *PostgresAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (alert.Alert, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM job_alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return alert.Alert{}, ErrAlertNotFound
		}
		return alert.Alert{}, err
	}
	return a, nil
}

func (r *PostgresAlertRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]alert.Alert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+alertColumns+` FROM job_alerts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alert.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresAlertRepository) ListActive(ctx context.Context) ([]alert.Alert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, user_email, user_name, title, keywords, location, remote_only, employment_types
		 FROM job_alerts
		 WHERE is_active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alert.Alert, 0)
	for rows.Next() {
		var a alert.Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.UserEmail, &a.UserName, &a.Title,
			&a.Keywords, &a.Location, &a.RemoteOnly, &a.EmploymentTypes,
		); err != nil {
			return nil, err
		}
		a.IsActive = true
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresAlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	if a == nil {
		return errors.New("nil alert")
	}
	n, err := r.db.Exec(ctx,
		`UPDATE job_alerts
		 SET title = $2, keywords = $3, location = $4, remote_only = $5,
		     employment_types = $6, is_active = $7, updated_at = now()
		 WHERE id = $1`,
		a.ID, a.Title, a.Keywords, a.Location, a.RemoteOnly, a.EmploymentTypes, a.IsActive,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (r *PostgresAlertRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_alerts SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (r *PostgresAlertRepository) UpdateStats(ctx context.Context, id uuid.UUID, upd alert.StatsUpdate) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_alerts
		 SET last_checked_at = $2,
		     total_jobs_found = total_jobs_found + $3,
		     total_emails_sent = total_emails_sent + $4,
		     updated_at = now()
		 WHERE id = $1`,
		id, upd.LastCheckedAt, upd.IncJobsFound, upd.IncEmailsSent,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(s scanner) (alert.Alert, error) {
	var a alert.Alert
	err := s.Scan(
		&a.ID, &a.UserID, &a.UserEmail, &a.UserName, &a.Title, &a.Keywords,
		&a.Location, &a.RemoteOnly, &a.EmploymentTypes, &a.IsActive,
		&a.LastCheckedAt, &a.TotalJobsFound, &a.TotalEmailsSent,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

var _ AlertRepository = (*PostgresAlertRepository)(nil)
