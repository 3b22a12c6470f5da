package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"butter-invoicing/internal/logger"
)

// Notifier delivers a freshly created invoice to the external delivery
// collaborator (email/webhook). Failures are logged per profile and never
// roll back the created invoice or the advanced run date.
type Notifier interface {
	Notify(ctx context.Context, invoice *Invoice, client *Client) error
}

// CreatedInvoice references one invoice materialized during a scheduler run.
type CreatedInvoice struct {
	ProfileID     string          `json:"profile_id"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Total         decimal.Decimal `json:"total"`
}

// ProfileError records a single profile's failure without aborting the batch.
type ProfileError struct {
	ProfileID string `json:"profile_id"`
	Message   string `json:"message"`
}

// RunResult summarizes one scheduler run.
type RunResult struct {
	Processed int              `json:"processed"`
	Skipped   int              `json:"skipped"`
	Created   []CreatedInvoice `json:"created"`
	Errors    []ProfileError   `json:"errors,omitempty"`
}

// Scheduler materializes invoices from due recurring profiles. Each profile
// is handled in its own transaction: the invoice insert and the
// next_run_date advancement commit together or not at all. Overlapping runs
// are guarded twice: FOR UPDATE SKIP LOCKED on the profile row, and a
// unique (source_profile_id, issue_date) index on invoices.
type Scheduler struct {
	pool     *pgxpool.Pool
	notifier Notifier
	log      zerolog.Logger
}

// NewScheduler constructs a Scheduler. notifier may be nil to skip delivery.
func NewScheduler(pool *pgxpool.Pool, notifier Notifier) *Scheduler {
	return &Scheduler{
		pool:     pool,
		notifier: notifier,
		log:      logger.WithComponent("scheduler"),
	}
}

// Run processes every Active profile due on or before today (YYYY-MM-DD).
// One profile's failure never blocks the others.
func (s *Scheduler) Run(ctx context.Context, today string) (*RunResult, error) {
	date, err := time.Parse(DateLayout, today)
	if err != nil {
		return nil, fmt.Errorf("invalid run date %q: %w", today, ErrValidation)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id FROM recurring_invoices
		WHERE status = $1 AND next_run_date <= $2
		ORDER BY next_run_date
	`, ProfileActive, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query due profiles: %w", err)
	}
	var due []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan profile id: %w", err)
		}
		due = append(due, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due profiles: %w", err)
	}

	result := &RunResult{}
	for _, profileID := range due {
		created, client, err := s.processProfile(ctx, profileID, date)
		switch {
		case err != nil:
			s.log.Error().Err(err).Str("profile_id", profileID).Msg("profile run failed")
			result.Errors = append(result.Errors, ProfileError{ProfileID: profileID, Message: err.Error()})
		case created == nil:
			result.Skipped++
		default:
			result.Processed++
			result.Created = append(result.Created, CreatedInvoice{
				ProfileID:     profileID,
				InvoiceID:     created.ID,
				InvoiceNumber: created.InvoiceNumber,
				ClientName:    client.Name,
				Total:         created.Total,
			})
			s.log.Info().
				Str("profile_id", profileID).
				Str("invoice_number", created.InvoiceNumber).
				Str("client", client.Name).
				Msg("invoice created")
			s.deliver(ctx, created, client, result)
		}
	}
	return result, nil
}

// deliver is fire-and-forget: a failed notification is logged against the
// profile but the created invoice stands.
func (s *Scheduler) deliver(ctx context.Context, inv *Invoice, client *Client, result *RunResult) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, inv, client); err != nil {
		s.log.Warn().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("delivery failed")
		result.Errors = append(result.Errors, ProfileError{
			ProfileID: derefOrEmpty(inv.SourceProfileID),
			Message:   fmt.Sprintf("delivery failed for invoice %s: %v", inv.InvoiceNumber, err),
		})
	}
}

// processProfile handles one due profile in a single transaction. It returns
// (nil, nil, nil) when the profile was skipped: locked by a concurrent run,
// no longer due, or already materialized for today (crash-retry case; the
// run date is still advanced so the profile does not wedge).
func (s *Scheduler) processProfile(ctx context.Context, profileID string, today time.Time) (*Invoice, *Client, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		clientID, nextRunDate string
		frequency             Frequency
		status                ProfileStatus
		paymentTerms          int
		subtotal, tax, total  decimal.Decimal
		includeGST            bool
	)
	err = tx.QueryRow(ctx, `
		SELECT client_id, frequency, payment_terms, next_run_date::text, status,
		       subtotal, tax, total, include_gst
		FROM recurring_invoices
		WHERE id = $1
		FOR UPDATE SKIP LOCKED
	`, profileID).Scan(
		&clientID, &frequency, &paymentTerms, &nextRunDate, &status,
		&subtotal, &tax, &total, &includeGST,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Held by an overlapping run, or deleted since the scan.
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to lock profile: %w", err)
	}

	todayStr := today.Format(DateLayout)
	if status != ProfileActive || nextRunDate > todayStr {
		// A concurrent run got here first.
		return nil, nil, nil
	}

	client := &Client{}
	err = tx.QueryRow(ctx,
		"SELECT id, name, contact_name, email, created_at FROM clients WHERE id = $1", clientID,
	).Scan(&client.ID, &client.Name, &client.ContactName, &client.Email, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to fetch client %s: %w", clientID, err)
	}

	// Advance exactly one period from the previous value, never from today.
	prev, err := time.Parse(DateLayout, nextRunDate)
	if err != nil {
		return nil, nil, fmt.Errorf("corrupt next_run_date %q: %w", nextRunDate, err)
	}
	advanced := AdvanceRunDate(prev, frequency).Format(DateLayout)

	var alreadyBilled bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM invoices WHERE source_profile_id = $1 AND issue_date = $2)
	`, profileID, todayStr).Scan(&alreadyBilled)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if alreadyBilled {
		if _, err := tx.Exec(ctx,
			"UPDATE recurring_invoices SET next_run_date = $1 WHERE id = $2", advanced, profileID,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to advance run date: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to commit run-date advance: %w", err)
		}
		return nil, nil, nil
	}

	numbers, err := clientInvoiceNumbersTx(ctx, tx, clientID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := fetchRecurringLinesQ(ctx, tx, profileID)
	if err != nil {
		return nil, nil, err
	}

	inv := &Invoice{
		ClientID:        clientID,
		InvoiceNumber:   NextInvoiceNumber(client.Name, numbers),
		IssueDate:       todayStr,
		DueDate:         today.AddDate(0, 0, paymentTerms).Format(DateLayout),
		Status:          InvoiceSent, // recurring invoices are auto-sent
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		IncludeGST:      includeGST,
		SourceProfileID: &profileID,
		Lines:           lines,
	}
	if err := insertInvoiceTx(ctx, tx, inv); err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE recurring_invoices SET next_run_date = $1 WHERE id = $2", advanced, profileID,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to advance run date: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit invoice materialization: %w", err)
	}
	return inv, client, nil
}

// AdvanceRunDate moves a run date forward one period: Monthly +1 month,
// Quarterly +3, Yearly +12. An unrecognized frequency falls back to Monthly.
// Day-of-month is clamped to the target month's last day, so Jan 31 advances
// to Feb 29 in a leap year rather than spilling into March.
func AdvanceRunDate(from time.Time, freq Frequency) time.Time {
	months := 1
	switch freq {
	case Quarterly:
		months = 3
	case Yearly:
		months = 12
	}
	firstOfTarget := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := from.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
