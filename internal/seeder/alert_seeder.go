// Package seeder inserts demo data for local development. Production never
// runs it.
package seeder

import (
	"context"
	"fmt"
	"log"

	"velocity/internal/database"

	"github.com/google/uuid"
)

// Demo user for local runs. Fixed id so reseeding stays idempotent.
var demoUserID = uuid.MustParse("6b1f9a52-0000-4000-8000-000000000001")

type AlertSeeder struct {
	Email  string
	Logger *log.Logger
}

func (s AlertSeeder) Name() string { return "alerts" }

func (s AlertSeeder) Run(ctx context.Context, db database.DB) error {
	if s.Email == "" {
		return nil
	}

	if err := ensureTableColumns(ctx, db, "job_alerts",
		"id",
		"user_id",
		"user_email",
		"user_name",
		"title",
		"keywords",
		"location",
		"remote_only",
		"employment_types",
		"is_active",
	); err != nil {
		return err
	}

	row := db.QueryRow(ctx, `SELECT count(*) FROM job_alerts WHERE user_id = $1`, demoUserID)
	var n int
	if err := row.Scan(&n); err != nil {
		return fmt.Errorf("count demo alerts: %w", err)
	}
	if n > 0 {
		return nil
	}

	items := []struct {
		Title           string
		Keywords        []string
		Location        string
		RemoteOnly      bool
		EmploymentTypes []string
	}{
		{
			Title:           "Backend Engineer",
			Keywords:        []string{"go", "postgresql"},
			Location:        "Jakarta, ID",
			EmploymentTypes: []string{"full-time"},
		},
		{
			Title:      "Site Reliability Engineer",
			Keywords:   []string{"kubernetes"},
			RemoteOnly: true,
		},
	}

	for _, it := range items {
		_, err := db.Exec(ctx,
			`INSERT INTO job_alerts (
				id, user_id, user_email, user_name, title, keywords, location,
				remote_only, employment_types, is_active
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE)`,
			uuid.New(),
			demoUserID,
			s.Email,
			"Demo User",
			it.Title,
			it.Keywords,
			it.Location,
			it.RemoteOnly,
			it.EmploymentTypes,
		)
		if err != nil {
			return fmt.Errorf("seed alert %q: %w", it.Title, err)
		}
	}

	if s.Logger != nil {
		s.Logger.Printf("[Seeder] Seeded %d demo alert(s) for %s", len(items), s.Email)
	}
	return nil
}

func ensureTableColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if table == "" {
		return fmt.Errorf("empty table")
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			return fmt.Errorf("schema mismatch: missing column %s.%s", table, col)
		}
	}
	return nil
}
