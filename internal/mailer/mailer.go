// Package mailer sends job-alert digest emails through an SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"velocity/internal/config"
	"velocity/internal/domain/joblisting"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Precondition violations. Callers must not retry these: an empty recipient
// or an empty job set will never succeed.
var (
	ErrNoRecipient = errors.New("no recipient email address")
	ErrNoJobs      = errors.New("no jobs to send")
)

// Digest is one alert-run's worth of new jobs for one user.
type Digest struct {
	UserEmail  string
	UserName   string
	AlertTitle string
	Jobs       []joblisting.JobListing
}

type Mailer interface {
	// SendDigest sends exactly one email containing every job in the digest
	// and returns the message id recorded in the notification ledger.
	SendDigest(ctx context.Context, d Digest) (messageID string, err error)
}

type SMTPMailer struct {
	dialer   *gomail.Dialer
	fromAddr string
	fromName string
	logger   *log.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *log.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromAddr: cfg.FromAddr,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// Verify dials the relay once so a misconfigured account is visible at
// startup instead of on the first alert run. Failure is logged, not fatal.
func (m *SMTPMailer) Verify() {
	closer, err := m.dialer.Dial()
	if err != nil {
		if m.logger != nil {
			m.logger.Printf("[Mailer] SMTP verification failed: %v", err)
		}
		return
	}
	_ = closer.Close()
	if m.logger != nil {
		m.logger.Printf("[Mailer] SMTP relay ready (%s:%d)", m.dialer.Host, m.dialer.Port)
	}
}

func (m *SMTPMailer) SendDigest(ctx context.Context, d Digest) (string, error) {
	if strings.TrimSpace(d.UserEmail) == "" {
		return "", ErrNoRecipient
	}
	if len(d.Jobs) == 0 {
		return "", ErrNoJobs
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := renderHTML(d)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}

	messageID := fmt.Sprintf("<%s@velocity>", uuid.NewString())

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.fromAddr, m.fromName))
	msg.SetHeader("To", d.UserEmail)
	msg.SetHeader("Subject", Subject(d))
	msg.SetHeader("Message-ID", messageID)
	msg.SetBody("text/plain", renderText(d))
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("send digest: %w", err)
	}

	if m.logger != nil {
		m.logger.Printf("[Mailer] Digest sent to %s: %d job(s), message id %s",
			d.UserEmail, len(d.Jobs), messageID)
	}
	return messageID, nil
}

// Subject renders the digest subject line, e.g. `3 new jobs for "Backend"`.
func Subject(d Digest) string {
	plural := ""
	if len(d.Jobs) != 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d new job%s for %q", len(d.Jobs), plural, d.AlertTitle)
}

var _ Mailer = (*SMTPMailer)(nil)
