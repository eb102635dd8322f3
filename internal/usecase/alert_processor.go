package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"velocity/internal/domain/alert"
	"velocity/internal/domain/joblisting"
	"velocity/internal/domain/notification"
	"velocity/internal/jobsearch"
	"velocity/internal/mailer"
	"velocity/internal/repository"

	"github.com/google/uuid"
)

// ProcessResult summarizes one alert-run.
type ProcessResult struct {
	Success bool
	NewJobs int
}

// AlertProcessor runs one alert check end to end: fetch, reconcile the
// listing cache, dedup against the notification ledger, send a single digest
// and record the outcome. Only an upstream rate limit makes Process return
// an error; every other failure is absorbed into the run.
type AlertProcessor struct {
	search   jobsearch.Client
	listings repository.JobListingRepository
	ledger   repository.NotificationLogRepository
	alerts   repository.AlertRepository
	mail     mailer.Mailer
	breaker  *CircuitBreaker
	logger   *log.Logger
	now      func() time.Time
}

func NewAlertProcessor(
	search jobsearch.Client,
	listings repository.JobListingRepository,
	ledger repository.NotificationLogRepository,
	alerts repository.AlertRepository,
	mail mailer.Mailer,
	breaker *CircuitBreaker,
	logger *log.Logger,
) *AlertProcessor {
	return &AlertProcessor{
		search:   search,
		listings: listings,
		ledger:   ledger,
		alerts:   alerts,
		mail:     mail,
		breaker:  breaker,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *AlertProcessor) Process(ctx context.Context, task alert.CheckTask) (ProcessResult, error) {
	if strings.TrimSpace(task.UserEmail) == "" {
		p.logf("[Processor] Alert %s has no recipient email, skipping", task.AlertID)
		return ProcessResult{}, nil
	}

	fetched, err := p.search.Search(ctx, jobsearch.Query{
		Text:            buildSearchQuery(task),
		Location:        task.Location,
		RemoteOnly:      task.RemoteOnly,
		EmploymentTypes: task.EmploymentTypes,
		Page:            1,
		NumPages:        1,
	})
	if err != nil {
		if errors.Is(err, jobsearch.ErrRateLimited) {
			p.breaker.RecordFailure()
			// Propagate so the queue's retry policy reschedules the run.
			return ProcessResult{}, fmt.Errorf("alert %s: %w", task.AlertID, err)
		}
		// The client degrades other upstream failures itself; anything else
		// here is unexpected but still must not fail the run.
		p.logf("[Processor] Alert %s: search failed: %v", task.AlertID, err)
		fetched = nil
	}
	p.breaker.RecordSuccess()

	if len(fetched) == 0 {
		p.stampChecked(ctx, task.AlertID)
		return ProcessResult{Success: true}, nil
	}

	newJobs := p.reconcile(ctx, task, fetched)
	p.logf("[Processor] Alert %s: %d fetched, %d new after dedup", task.AlertID, len(fetched), len(newJobs))

	if len(newJobs) == 0 {
		p.stampChecked(ctx, task.AlertID)
		return ProcessResult{Success: true}, nil
	}

	messageID, sendErr := p.mail.SendDigest(ctx, mailer.Digest{
		UserEmail:  task.UserEmail,
		UserName:   task.UserName,
		AlertTitle: task.Title,
		Jobs:       newJobs,
	})

	if sendErr != nil {
		p.logf("[Processor] Alert %s: digest send failed: %v", task.AlertID, sendErr)
		p.recordOutcome(ctx, task, newJobs, notification.StatusFailed, "", sendErr.Error())
		p.stampChecked(ctx, task.AlertID)
		return ProcessResult{Success: true, NewJobs: len(newJobs)}, nil
	}

	p.recordOutcome(ctx, task, newJobs, notification.StatusSent, messageID, "")

	if err := p.alerts.UpdateStats(ctx, task.AlertID, alert.StatsUpdate{
		LastCheckedAt: p.now().UTC(),
		IncJobsFound:  len(newJobs),
		IncEmailsSent: 1,
	}); err != nil {
		p.logf("[Processor] Alert %s: stats update failed: %v", task.AlertID, err)
	}

	return ProcessResult{Success: true, NewJobs: len(newJobs)}, nil
}

// reconcile upserts every fetched listing into the shared cache and keeps
// the ones this user has never been notified about.
func (p *AlertProcessor) reconcile(ctx context.Context, task alert.CheckTask, fetched []joblisting.JobListing) []joblisting.JobListing {
	newJobs := make([]joblisting.JobListing, 0, len(fetched))
	for _, f := range fetched {
		stored, err := p.listings.Upsert(ctx, f)
		if err != nil {
			p.logf("[Processor] Alert %s: cache upsert for %q failed: %v", task.AlertID, f.ExternalID, err)
			continue
		}

		notified, err := p.ledger.Exists(ctx, task.UserID, stored.ID)
		if err != nil {
			p.logf("[Processor] Alert %s: ledger lookup for %q failed: %v", task.AlertID, f.ExternalID, err)
			continue
		}
		if !notified {
			newJobs = append(newJobs, stored)
		}
	}
	return newJobs
}

// recordOutcome writes one ledger row per job. Duplicate-key conflicts mean
// a concurrent run already logged the pair and are swallowed.
func (p *AlertProcessor) recordOutcome(ctx context.Context, task alert.CheckTask, jobs []joblisting.JobListing, status, messageID, errMsg string) {
	for _, j := range jobs {
		entry := &notification.Log{
			UserID:        task.UserID,
			AlertID:       task.AlertID,
			JobListingID:  j.ID,
			ExternalJobID: j.ExternalID,
			EmailStatus:   status,
		}
		if messageID != "" {
			entry.EmailMessageID = &messageID
		}
		if errMsg != "" {
			entry.ErrorMessage = &errMsg
		}

		if err := p.ledger.Insert(ctx, entry); err != nil && !errors.Is(err, repository.ErrDuplicateNotification) {
			p.logf("[Processor] Alert %s: ledger insert for %q failed: %v", task.AlertID, j.ExternalID, err)
		}
	}
}

func (p *AlertProcessor) stampChecked(ctx context.Context, alertID uuid.UUID) {
	if err := p.alerts.UpdateStats(ctx, alertID, alert.StatsUpdate{LastCheckedAt: p.now().UTC()}); err != nil {
		p.logf("[Processor] Alert %s: stats update failed: %v", alertID, err)
	}
}

func (p *AlertProcessor) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// buildSearchQuery concatenates the alert title and keywords into the
// upstream free-text query.
func buildSearchQuery(task alert.CheckTask) string {
	parts := make([]string, 0, 1+len(task.Keywords))
	if t := strings.TrimSpace(task.Title); t != "" {
		parts = append(parts, t)
	}
	for _, k := range task.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}
