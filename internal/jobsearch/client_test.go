package jobsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *httpClient {
	return &httpClient{
		baseURL: srv.URL,
		apiKey:  "test-key",
		apiHost: "test-host",
		client:  srv.Client(),
		now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestSearch_Normalizes(t *testing.T) {
	var gotQuery url.Values
	var gotKey, gotHost string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"data": [
				{
					"job_id": "abc123",
					"job_title": "Backend Engineer",
					"employer_name": "Acme",
					"job_city": "Austin",
					"job_state": "TX",
					"job_country": "US",
					"job_is_remote": true,
					"job_employment_type": "FULLTIME",
					"job_min_salary": 120000,
					"job_max_salary": 150000,
					"job_salary_currency": "USD",
					"job_apply_link": "https://example.com/apply",
					"job_publisher": "LinkedIn",
					"job_google_link": "https://google.com/jobs/abc123"
				},
				{"job_id": "", "job_title": "ignored"}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	listings, err := c.Search(context.Background(), Query{
		Text:            "Backend Engineer go",
		Location:        "Austin",
		RemoteOnly:      true,
		EmploymentTypes: []string{"full-time"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if gotKey != "test-key" || gotHost != "test-host" {
		t.Fatalf("auth headers not set: key=%q host=%q", gotKey, gotHost)
	}
	if gotQuery.Get("query") != "Backend Engineer go" {
		t.Fatalf("unexpected query param: %q", gotQuery.Get("query"))
	}
	if gotQuery.Get("remote_jobs_only") != "true" {
		t.Fatalf("expected remote_jobs_only=true")
	}
	if gotQuery.Get("employment_types") != "FULLTIME" {
		t.Fatalf("unexpected employment_types: %q", gotQuery.Get("employment_types"))
	}
	if gotQuery.Get("page") != "1" || gotQuery.Get("num_pages") != "1" {
		t.Fatalf("expected page/num_pages defaults, got %q/%q", gotQuery.Get("page"), gotQuery.Get("num_pages"))
	}

	if len(listings) != 1 {
		t.Fatalf("expected 1 listing (blank job_id dropped), got %d", len(listings))
	}
	l := listings[0]
	if l.ExternalID != "abc123" {
		t.Fatalf("unexpected external id: %q", l.ExternalID)
	}
	if l.Location != "Austin, TX, US" {
		t.Fatalf("unexpected location: %q", l.Location)
	}
	if !l.IsRemote {
		t.Fatalf("expected remote listing")
	}
	if l.Salary.Min != 120000 || l.Salary.Max != 150000 || l.Salary.Currency != "USD" {
		t.Fatalf("unexpected salary: %+v", l.Salary)
	}
	if l.ApplyLink != "https://example.com/apply" {
		t.Fatalf("unexpected apply link: %q", l.ApplyLink)
	}
	if l.Source.Platform != "LinkedIn" {
		t.Fatalf("unexpected source platform: %q", l.Source.Platform)
	}
	if !l.Source.ScrapedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scraped at: %v", l.Source.ScrapedAt)
	}
}

func TestSearch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Search(context.Background(), Query{Text: "go"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSearch_UpstreamErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	listings, err := c.Search(context.Background(), Query{Text: "go"})
	if err != nil {
		t.Fatalf("expected degraded empty result, got err %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestSearch_BadJSONDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	listings, err := c.Search(context.Background(), Query{Text: "go"})
	if err != nil {
		t.Fatalf("expected degraded empty result, got err %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestSearch_FallsBackToGoogleLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":[{"job_id":"x1","job_title":"T","employer_name":"E","job_google_link":"https://google.com/jobs/x1"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	listings, err := c.Search(context.Background(), Query{Text: "go"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].ApplyLink != "https://google.com/jobs/x1" {
		t.Fatalf("expected google link fallback, got %q", listings[0].ApplyLink)
	}
	if listings[0].Source.Platform != "jsearch" {
		t.Fatalf("expected default platform, got %q", listings[0].Source.Platform)
	}
}
