package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLogResponse struct {
	ID             uuid.UUID `json:"id"`
	AlertID        uuid.UUID `json:"alert_id"`
	JobListingID   uuid.UUID `json:"job_listing_id"`
	ExternalJobID  string    `json:"external_job_id"`
	EmailStatus    string    `json:"email_status"`
	EmailMessageID *string   `json:"email_message_id"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}
