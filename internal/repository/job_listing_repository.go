package repository

import (
	"context"
	"errors"

	"velocity/internal/database"
	"velocity/internal/domain/joblisting"

	"github.com/jackc/pgx/v5"
)

var ErrListingNotFound = errors.New("job listing not found")

type JobListingRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (joblisting.JobListing, error)
	// Upsert inserts the listing unless a row with the same external id
	// already exists, and returns the stored row either way. Concurrent
	// inserts of the same external id resolve first-writer-wins through the
	// unique constraint.
	Upsert(ctx context.Context, l joblisting.JobListing) (joblisting.JobListing, error)
}

type PostgresJobListingRepository struct {
	db database.DB
}

func NewPostgresJobListingRepository(db database.DB) *PostgresJobListingRepository {
	return &PostgresJobListingRepository{db: db}
}

const listingColumns = `id, external_id, title, company, location, employment_type, is_remote,
	COALESCE(salary_min, 0), COALESCE(salary_max, 0), salary_currency,
	apply_link, source_platform, source_url, COALESCE(scraped_at, created_at), created_at`

func (r *PostgresJobListingRepository) FindByExternalID(ctx context.Context, externalID string) (joblisting.JobListing, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM job_listings WHERE external_id = $1`, externalID)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return joblisting.JobListing{}, ErrListingNotFound
		}
		return joblisting.JobListing{}, err
	}
	return l, nil
}

func (r *PostgresJobListingRepository) Upsert(ctx context.Context, l joblisting.JobListing) (joblisting.JobListing, error) {
	var salaryMin, salaryMax *int64
	if l.Salary.Min > 0 {
		salaryMin = &l.Salary.Min
	}
	if l.Salary.Max > 0 {
		salaryMax = &l.Salary.Max
	}
	currency := l.Salary.Currency
	if currency == "" {
		currency = "USD"
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO job_listings
			(external_id, title, company, location, employment_type, is_remote,
			 salary_min, salary_max, salary_currency, apply_link,
			 source_platform, source_url, scraped_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (external_id) DO NOTHING`,
		l.ExternalID, l.Title, l.Company, l.Location, l.EmploymentType, l.IsRemote,
		salaryMin, salaryMax, currency, l.ApplyLink,
		l.Source.Platform, l.Source.URL, l.Source.ScrapedAt,
	)
	if err != nil {
		return joblisting.JobListing{}, err
	}

	// Re-fetch so the caller always sees the winning row's id, whether the
	// insert above landed or a concurrent run got there first.
	return r.FindByExternalID(ctx, l.ExternalID)
}

func scanListing(s scanner) (joblisting.JobListing, error) {
	var l joblisting.JobListing
	err := s.Scan(
		&l.ID, &l.ExternalID, &l.Title, &l.Company, &l.Location,
		&l.EmploymentType, &l.IsRemote,
		&l.Salary.Min, &l.Salary.Max, &l.Salary.Currency,
		&l.ApplyLink, &l.Source.Platform, &l.Source.URL, &l.Source.ScrapedAt,
		&l.CreatedAt,
	)
	return l, err
}

var _ JobListingRepository = (*PostgresJobListingRepository)(nil)
