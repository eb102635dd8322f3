package dto

import (
	"time"

	"github.com/google/uuid"
)

type AlertResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Keywords        []string   `json:"keywords"`
	Location        string     `json:"location"`
	RemoteOnly      bool       `json:"remote_only"`
	EmploymentTypes []string   `json:"employment_types"`
	IsActive        bool       `json:"is_active"`
	LastCheckedAt   *time.Time `json:"last_checked_at"`
	TotalJobsFound  int        `json:"total_jobs_found"`
	TotalEmailsSent int        `json:"total_emails_sent"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type TriggerResponse struct {
	Success bool `json:"success"`
	NewJobs int  `json:"new_jobs"`
}
