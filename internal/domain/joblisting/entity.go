package joblisting

import (
	"time"

	"github.com/google/uuid"
)

// Salary is a normalized salary range; zero min and max means unknown.
type Salary struct {
	Min      int64
	Max      int64
	Currency string
}

// Source records where a listing was observed upstream.
type Source struct {
	Platform  string
	URL       string
	ScrapedAt time.Time
}

// JobListing is a cached external posting, keyed by the provider's own id.
// Rows are insert-only: the first writer wins and later observations of the
// same external id reuse the stored row.
type JobListing struct {
	ID             uuid.UUID
	ExternalID     string
	Title          string
	Company        string
	Location       string
	EmploymentType string
	IsRemote       bool
	Salary         Salary
	ApplyLink      string
	Source         Source
	CreatedAt      time.Time
}
