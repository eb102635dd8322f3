// Package jobsearch queries the external job-search API and normalizes its
// results into our canonical listing shape.
package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"velocity/internal/config"
	"velocity/internal/domain/joblisting"
)

// ErrRateLimited is returned when the upstream rejects a request for quota
// reasons. It is the only upstream failure that propagates: it feeds the
// circuit breaker and the queue's retry policy. Every other failure degrades
// to an empty result set.
var ErrRateLimited = errors.New("job search rate limit exceeded")

const httpTimeout = 15 * time.Second

// Query describes one search. EmploymentTypes carries our internal tokens;
// the client maps them to the upstream vocabulary.
type Query struct {
	Text            string
	Location        string
	RemoteOnly      bool
	EmploymentTypes []string
	Page            int
	NumPages        int
}

type Client interface {
	Search(ctx context.Context, q Query) ([]joblisting.JobListing, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	apiHost string
	client  *http.Client
	logger  *log.Logger
	now     func() time.Time
}

func NewClient(cfg config.JobSearchConfig, logger *log.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		apiHost: cfg.APIHost,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
		now:     time.Now,
	}
}

// searchResponse mirrors the upstream JSON envelope.
type searchResponse struct {
	Status string         `json:"status"`
	Data   []searchResult `json:"data"`
}

type searchResult struct {
	JobID          string  `json:"job_id"`
	JobTitle       string  `json:"job_title"`
	EmployerName   string  `json:"employer_name"`
	JobCity        string  `json:"job_city"`
	JobState       string  `json:"job_state"`
	JobCountry     string  `json:"job_country"`
	JobIsRemote    bool    `json:"job_is_remote"`
	EmploymentType string  `json:"job_employment_type"`
	MinSalary      float64 `json:"job_min_salary"`
	MaxSalary      float64 `json:"job_max_salary"`
	SalaryCurrency string  `json:"job_salary_currency"`
	ApplyLink      string  `json:"job_apply_link"`
	Publisher      string  `json:"job_publisher"`
	JobGoogleLink  string  `json:"job_google_link"`
}

func (c *httpClient) Search(ctx context.Context, q Query) ([]joblisting.JobListing, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil job search client")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	numPages := q.NumPages
	if numPages < 1 {
		numPages = 1
	}

	params := url.Values{}
	params.Set("query", strings.TrimSpace(q.Text))
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", strconv.Itoa(numPages))
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("location", loc)
	}
	if q.RemoteOnly {
		params.Set("remote_jobs_only", "true")
	}
	if types := MapEmploymentTypes(q.EmploymentTypes); types != "" {
		params.Set("employment_types", types)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failures degrade to "no results"; only rate limiting
		// propagates.
		if c.logger != nil {
			c.logger.Printf("[JobSearch] request failed: %v", err)
		}
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if c.logger != nil {
			c.logger.Printf("[JobSearch] upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, nil
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if c.logger != nil {
			c.logger.Printf("[JobSearch] decode failed: %v", err)
		}
		return nil, nil
	}

	scrapedAt := c.now().UTC()
	listings := make([]joblisting.JobListing, 0, len(out.Data))
	for _, r := range out.Data {
		if strings.TrimSpace(r.JobID) == "" {
			continue
		}
		listings = append(listings, joblisting.JobListing{
			ExternalID:     r.JobID,
			Title:          r.JobTitle,
			Company:        r.EmployerName,
			Location:       joinLocation(r.JobCity, r.JobState, r.JobCountry),
			EmploymentType: r.EmploymentType,
			IsRemote:       r.JobIsRemote,
			Salary: joblisting.Salary{
				Min:      int64(r.MinSalary),
				Max:      int64(r.MaxSalary),
				Currency: r.SalaryCurrency,
			},
			ApplyLink: firstNonEmpty(r.ApplyLink, r.JobGoogleLink),
			Source: joblisting.Source{
				Platform:  firstNonEmpty(r.Publisher, "jsearch"),
				URL:       r.JobGoogleLink,
				ScrapedAt: scrapedAt,
			},
		})
	}
	return listings, nil
}

func joinLocation(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Client = (*httpClient)(nil)
