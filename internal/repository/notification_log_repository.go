package repository

import (
	"context"
	"errors"

	"velocity/internal/database"
	"velocity/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateNotification signals the (user, job listing) row already
// exists; callers treat it as "another run got there first" and move on.
var ErrDuplicateNotification = errors.New("notification already logged")

const pgUniqueViolation = "23505"

type NotificationLogRepository interface {
	Exists(ctx context.Context, userID, jobListingID uuid.UUID) (bool, error)
	Insert(ctx context.Context, l *notification.Log) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]notification.Log, error)
}

type PostgresNotificationLogRepository struct {
	db database.DB
}

func NewPostgresNotificationLogRepository(db database.DB) *PostgresNotificationLogRepository {
	return &PostgresNotificationLogRepository{db: db}
}

func (r *PostgresNotificationLogRepository) Exists(ctx context.Context, userID, jobListingID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM notification_logs WHERE user_id = $1 AND job_listing_id = $2)`,
		userID, jobListingID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresNotificationLogRepository) Insert(ctx context.Context, l *notification.Log) error {
	if l == nil {
		return errors.New("nil notification log")
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO notification_logs
			(user_id, alert_id, job_listing_id, external_job_id, email_status, email_message_id, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		l.UserID, l.AlertID, l.JobListingID, l.ExternalJobID,
		l.EmailStatus, l.EmailMessageID, l.ErrorMessage,
	)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateNotification
		}
		return err
	}
	return nil
}

func (r *PostgresNotificationLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]notification.Log, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, alert_id, job_listing_id, external_job_id,
		        email_status, email_message_id, error_message, created_at
		 FROM notification_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Log, 0)
	for rows.Next() {
		var l notification.Log
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.AlertID, &l.JobListingID, &l.ExternalJobID,
			&l.EmailStatus, &l.EmailMessageID, &l.ErrorMessage, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var _ NotificationLogRepository = (*PostgresNotificationLogRepository)(nil)
