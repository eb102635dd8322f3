package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"velocity/internal/domain/alert"
	"velocity/internal/domain/joblisting"
	"velocity/internal/domain/notification"
	"velocity/internal/jobsearch"
	"velocity/internal/mailer"
	"velocity/internal/repository"

	"github.com/google/uuid"
)

type stubSearch struct {
	listings []joblisting.JobListing
	err      error
	calls    int
	lastQ    jobsearch.Query
}

func (s *stubSearch) Search(_ context.Context, q jobsearch.Query) ([]joblisting.JobListing, error) {
	s.calls++
	s.lastQ = q
	return s.listings, s.err
}

type mockListings struct {
	stored map[string]joblisting.JobListing
}

func newMockListings() *mockListings {
	return &mockListings{stored: map[string]joblisting.JobListing{}}
}

func (m *mockListings) FindByExternalID(_ context.Context, externalID string) (joblisting.JobListing, error) {
	l, ok := m.stored[externalID]
	if !ok {
		return joblisting.JobListing{}, repository.ErrListingNotFound
	}
	return l, nil
}

func (m *mockListings) Upsert(_ context.Context, l joblisting.JobListing) (joblisting.JobListing, error) {
	if existing, ok := m.stored[l.ExternalID]; ok {
		return existing, nil
	}
	l.ID = uuid.New()
	m.stored[l.ExternalID] = l
	return l, nil
}

type mockLedger struct {
	notified  map[uuid.UUID]bool // job listing id -> already notified
	inserted  []notification.Log
	insertErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{notified: map[uuid.UUID]bool{}}
}

func (m *mockLedger) Exists(_ context.Context, _ uuid.UUID, jobListingID uuid.UUID) (bool, error) {
	return m.notified[jobListingID], nil
}

func (m *mockLedger) Insert(_ context.Context, l *notification.Log) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, *l)
	return nil
}

func (m *mockLedger) ListByUser(context.Context, uuid.UUID, int, int) ([]notification.Log, error) {
	return nil, nil
}

type mockAlerts struct {
	stats []alert.StatsUpdate
}

func (m *mockAlerts) Create(context.Context, *alert.Alert) error { return nil }
func (m *mockAlerts) FindByID(context.Context, uuid.UUID) (alert.Alert, error) {
	return alert.Alert{}, repository.ErrAlertNotFound
}
func (m *mockAlerts) ListByUser(context.Context, uuid.UUID) ([]alert.Alert, error) { return nil, nil }
func (m *mockAlerts) ListActive(context.Context) ([]alert.Alert, error)            { return nil, nil }
func (m *mockAlerts) Update(context.Context, *alert.Alert) error                   { return nil }
func (m *mockAlerts) SetActive(context.Context, uuid.UUID, bool) error             { return nil }
func (m *mockAlerts) UpdateStats(_ context.Context, _ uuid.UUID, upd alert.StatsUpdate) error {
	m.stats = append(m.stats, upd)
	return nil
}

type mockMailer struct {
	digests []mailer.Digest
	err     error
}

func (m *mockMailer) SendDigest(_ context.Context, d mailer.Digest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.digests = append(m.digests, d)
	return fmt.Sprintf("<msg-%d@velocity>", len(m.digests)), nil
}

type processorFixture struct {
	search   *stubSearch
	listings *mockListings
	ledger   *mockLedger
	alerts   *mockAlerts
	mail     *mockMailer
	breaker  *CircuitBreaker
	proc     *AlertProcessor
}

func newProcessorFixture() *processorFixture {
	f := &processorFixture{
		search:   &stubSearch{},
		listings: newMockListings(),
		ledger:   newMockLedger(),
		alerts:   &mockAlerts{},
		mail:     &mockMailer{},
		breaker:  NewCircuitBreaker(nil, nil, nil),
	}
	f.proc = NewAlertProcessor(f.search, f.listings, f.ledger, f.alerts, f.mail, f.breaker, nil)
	return f
}

func task() alert.CheckTask {
	return alert.CheckTask{
		AlertID:   uuid.New(),
		UserID:    uuid.New(),
		UserEmail: "dev@example.com",
		UserName:  "Sam",
		Title:     "Backend Engineer",
		Keywords:  []string{"go", "node"},
	}
}

func TestProcess_SkipsWithoutRecipient(t *testing.T) {
	f := newProcessorFixture()
	tk := task()
	tk.UserEmail = "  "

	res, err := f.proc.Process(context.Background(), tk)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Success {
		t.Fatalf("expected non-success for recipientless alert")
	}
	if f.search.calls != 0 {
		t.Fatalf("search must not run without a recipient")
	}
}

func TestProcess_BuildsQueryFromTitleAndKeywords(t *testing.T) {
	f := newProcessorFixture()
	if _, err := f.proc.Process(context.Background(), task()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.search.lastQ.Text != "Backend Engineer go node" {
		t.Fatalf("unexpected search text: %q", f.search.lastQ.Text)
	}
}

func TestProcess_RateLimitPropagates(t *testing.T) {
	f := newProcessorFixture()
	f.search.err = jobsearch.ErrRateLimited

	_, err := f.proc.Process(context.Background(), task())
	if !errors.Is(err, jobsearch.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if len(f.mail.digests) != 0 {
		t.Fatalf("no digest should be sent on rate limit")
	}
	if len(f.alerts.stats) != 0 {
		t.Fatalf("stats must not be stamped on rate limit")
	}
}

func TestProcess_EmptyResultStampsAndSucceeds(t *testing.T) {
	f := newProcessorFixture()

	res, err := f.proc.Process(context.Background(), task())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Success || res.NewJobs != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.alerts.stats) != 1 {
		t.Fatalf("expected one stats stamp, got %d", len(f.alerts.stats))
	}
	if f.alerts.stats[0].IncJobsFound != 0 || f.alerts.stats[0].IncEmailsSent != 0 {
		t.Fatalf("empty run must not bump counters: %+v", f.alerts.stats[0])
	}
	if f.alerts.stats[0].LastCheckedAt.IsZero() {
		t.Fatalf("empty run must stamp last checked at")
	}
}

func TestProcess_SendsOneDigestForNewJobsOnly(t *testing.T) {
	f := newProcessorFixture()
	f.search.listings = []joblisting.JobListing{
		{ExternalID: "seen", Title: "Old Role", Company: "Acme"},
		{ExternalID: "new-1", Title: "Backend Engineer", Company: "Acme"},
		{ExternalID: "new-2", Title: "Platform Engineer", Company: "Beta"},
	}

	// Pre-store the first listing and mark it already notified.
	seen, _ := f.listings.Upsert(context.Background(), f.search.listings[0])
	f.ledger.notified[seen.ID] = true

	res, err := f.proc.Process(context.Background(), task())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Success || res.NewJobs != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(f.mail.digests) != 1 {
		t.Fatalf("expected exactly one digest, got %d", len(f.mail.digests))
	}
	if len(f.mail.digests[0].Jobs) != 2 {
		t.Fatalf("digest should carry only new jobs, got %d", len(f.mail.digests[0].Jobs))
	}

	if len(f.ledger.inserted) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(f.ledger.inserted))
	}
	for _, l := range f.ledger.inserted {
		if l.EmailStatus != notification.StatusSent {
			t.Fatalf("expected sent status, got %q", l.EmailStatus)
		}
		if l.EmailMessageID == nil || *l.EmailMessageID == "" {
			t.Fatalf("sent row must carry the message id")
		}
	}

	if len(f.alerts.stats) != 1 {
		t.Fatalf("expected one stats update, got %d", len(f.alerts.stats))
	}
	upd := f.alerts.stats[0]
	if upd.IncJobsFound != 2 || upd.IncEmailsSent != 1 {
		t.Fatalf("unexpected counter bump: %+v", upd)
	}
}

func TestProcess_RerunDoesNotRenotify(t *testing.T) {
	f := newProcessorFixture()
	f.search.listings = []joblisting.JobListing{
		{ExternalID: "j1", Title: "Backend Engineer", Company: "Acme"},
	}

	if _, err := f.proc.Process(context.Background(), task()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Reflect the first run's ledger rows in the dedup index.
	for _, l := range f.ledger.inserted {
		f.ledger.notified[l.JobListingID] = true
	}

	res, err := f.proc.Process(context.Background(), task())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.NewJobs != 0 {
		t.Fatalf("second run must find nothing new, got %d", res.NewJobs)
	}
	if len(f.mail.digests) != 1 {
		t.Fatalf("expected a single digest across both runs, got %d", len(f.mail.digests))
	}
}

func TestProcess_MailFailureRecordsFailedRows(t *testing.T) {
	f := newProcessorFixture()
	f.search.listings = []joblisting.JobListing{
		{ExternalID: "j1", Title: "Backend Engineer", Company: "Acme"},
	}
	f.mail.err = errors.New("smtp: connection refused")

	res, err := f.proc.Process(context.Background(), task())
	if err != nil {
		t.Fatalf("mail failure must not fail the run: %v", err)
	}
	if !res.Success || res.NewJobs != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(f.ledger.inserted) != 1 {
		t.Fatalf("expected 1 failed ledger row, got %d", len(f.ledger.inserted))
	}
	row := f.ledger.inserted[0]
	if row.EmailStatus != notification.StatusFailed {
		t.Fatalf("expected failed status, got %q", row.EmailStatus)
	}
	if row.ErrorMessage == nil || *row.ErrorMessage == "" {
		t.Fatalf("failed row must carry the error message")
	}

	// The run still counts as checked, but no email counter moves.
	if len(f.alerts.stats) != 1 {
		t.Fatalf("expected one stats stamp, got %d", len(f.alerts.stats))
	}
	if f.alerts.stats[0].IncEmailsSent != 0 {
		t.Fatalf("email counter must not move on send failure")
	}
}

func TestProcess_DuplicateLedgerInsertIsSwallowed(t *testing.T) {
	f := newProcessorFixture()
	f.search.listings = []joblisting.JobListing{
		{ExternalID: "j1", Title: "Backend Engineer", Company: "Acme"},
	}
	f.ledger.insertErr = repository.ErrDuplicateNotification

	res, err := f.proc.Process(context.Background(), task())
	if err != nil {
		t.Fatalf("duplicate insert must not fail the run: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success despite duplicate ledger rows")
	}
}
