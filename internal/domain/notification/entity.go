package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Log is one row per (user, job listing) that reached the notification
// decision point. The (UserID, JobListingID) pair is unique at the store
// level; that constraint is the deduplication mechanism.
type Log struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AlertID        uuid.UUID
	JobListingID   uuid.UUID
	ExternalJobID  string
	EmailStatus    string
	EmailMessageID *string
	ErrorMessage   *string
	CreatedAt      time.Time
}
