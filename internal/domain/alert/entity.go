package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a saved job search a user wants monitored. Email and name are
// denormalized from the user record so a check run needs no join.
type Alert struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	UserEmail       string
	UserName        string
	Title           string
	Keywords        []string
	Location        string
	RemoteOnly      bool
	EmploymentTypes []string
	IsActive        bool
	LastCheckedAt   *time.Time
	TotalJobsFound  int
	TotalEmailsSent int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CheckTask is the minimal projection handed to the queue for one check run.
type CheckTask struct {
	AlertID         uuid.UUID `json:"alertId"`
	UserID          uuid.UUID `json:"userId"`
	UserEmail       string    `json:"userEmail"`
	UserName        string    `json:"userName"`
	Title           string    `json:"title"`
	Keywords        []string  `json:"keywords"`
	Location        string    `json:"location"`
	RemoteOnly      bool      `json:"remoteOnly"`
	EmploymentTypes []string  `json:"employmentTypes"`
}

// Task projects an alert into its queue payload.
func (a Alert) Task() CheckTask {
	return CheckTask{
		AlertID:         a.ID,
		UserID:          a.UserID,
		UserEmail:       a.UserEmail,
		UserName:        a.UserName,
		Title:           a.Title,
		Keywords:        a.Keywords,
		Location:        a.Location,
		RemoteOnly:      a.RemoteOnly,
		EmploymentTypes: a.EmploymentTypes,
	}
}

// StatsUpdate carries the post-run mutations applied to an alert.
type StatsUpdate struct {
	LastCheckedAt time.Time
	IncJobsFound  int
	IncEmailsSent int
}
