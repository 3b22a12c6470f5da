package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecurringInvoiceInput holds the fields for creating a recurring profile.
// Money fields are recomputed server-side from the lines.
type RecurringInvoiceInput struct {
	ClientID     string
	StartDate    string // YYYY-MM-DD; empty means today
	Frequency    Frequency
	PaymentTerms int
	IncludeGST   bool
	Lines        []LineItem
}

// RecurringService manages recurring invoice profiles. nextRunDate only ever
// advances, and only the Scheduler advances it.
type RecurringService interface {
	CreateProfile(ctx context.Context, input RecurringInvoiceInput) (*RecurringInvoice, error)
	GetProfiles(ctx context.Context) ([]RecurringInvoice, error)
	GetProfile(ctx context.Context, id string) (*RecurringInvoice, error)
	PauseProfile(ctx context.Context, id string) (*RecurringInvoice, error)
	ResumeProfile(ctx context.Context, id string) (*RecurringInvoice, error)
}

type recurringService struct {
	pool *pgxpool.Pool
}

// NewRecurringService constructs a RecurringService backed by PostgreSQL.
func NewRecurringService(pool *pgxpool.Pool) RecurringService {
	return &recurringService{pool: pool}
}

func (s *recurringService) CreateProfile(ctx context.Context, input RecurringInvoiceInput) (*RecurringInvoice, error) {
	if input.ClientID == "" {
		return nil, fmt.Errorf("recurring profile requires a client: %w", ErrValidation)
	}
	if !input.Frequency.Valid() {
		return nil, fmt.Errorf("unknown frequency %q: %w", input.Frequency, ErrValidation)
	}
	if input.PaymentTerms <= 0 {
		return nil, fmt.Errorf("payment terms must be positive: %w", ErrValidation)
	}
	for i, l := range input.Lines {
		if l.Quantity.IsNegative() || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d: quantity and unit price must be non-negative: %w", i+1, ErrValidation)
		}
	}
	startDate := input.StartDate
	if startDate == "" {
		startDate = time.Now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, startDate); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", input.StartDate, ErrValidation)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", input.ClientID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check client %s: %w", input.ClientID, err)
	}
	if !exists {
		return nil, fmt.Errorf("client %s: %w", input.ClientID, ErrNotFound)
	}

	subtotal, gst, total := ComputeTotals(input.Lines, input.IncludeGST)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO recurring_invoices (client_id, start_date, frequency, payment_terms,
		                                next_run_date, status, subtotal, tax, total, include_gst)
		VALUES ($1, $2, $3, $4, $2, $5, $6, $7, $8, $9)
		RETURNING id
	`, input.ClientID, startDate, input.Frequency, input.PaymentTerms, ProfileActive,
		subtotal, gst, total, input.IncludeGST,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recurring profile: %w", err)
	}

	for i, l := range input.Lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO recurring_invoice_lines (recurring_id, line_number, category, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, i+1, l.Category, l.Description, l.Quantity, l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert recurring line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recurring profile: %w", err)
	}
	return s.GetProfile(ctx, id)
}

func (s *recurringService) GetProfiles(ctx context.Context) ([]RecurringInvoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, start_date::text, frequency, payment_terms,
		       next_run_date::text, status, subtotal, tax, total, include_gst, created_at
		FROM recurring_invoices
		ORDER BY next_run_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring profiles: %w", err)
	}
	defer rows.Close()

	var profiles []RecurringInvoice
	for rows.Next() {
		var p RecurringInvoice
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.StartDate, &p.Frequency, &p.PaymentTerms,
			&p.NextRunDate, &p.Status, &p.Subtotal, &p.Tax, &p.Total, &p.IncludeGST, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recurring profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *recurringService) GetProfile(ctx context.Context, id string) (*RecurringInvoice, error) {
	p := &RecurringInvoice{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, start_date::text, frequency, payment_terms,
		       next_run_date::text, status, subtotal, tax, total, include_gst, created_at
		FROM recurring_invoices
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.ClientID, &p.StartDate, &p.Frequency, &p.PaymentTerms,
		&p.NextRunDate, &p.Status, &p.Subtotal, &p.Tax, &p.Total, &p.IncludeGST, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recurring profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch recurring profile %s: %w", id, err)
	}

	lines, err := fetchRecurringLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return p, nil
}

func (s *recurringService) PauseProfile(ctx context.Context, id string) (*RecurringInvoice, error) {
	return s.setStatus(ctx, id, ProfilePaused)
}

func (s *recurringService) ResumeProfile(ctx context.Context, id string) (*RecurringInvoice, error) {
	return s.setStatus(ctx, id, ProfileActive)
}

func (s *recurringService) setStatus(ctx context.Context, id string, status ProfileStatus) (*RecurringInvoice, error) {
	tag, err := s.pool.Exec(ctx, "UPDATE recurring_invoices SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update recurring profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("recurring profile %s: %w", id, ErrNotFound)
	}
	return s.GetProfile(ctx, id)
}

func fetchRecurringLinesQ(ctx context.Context, q pgxQuerier, recurringID string) ([]LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT category, description, quantity, unit_price
		FROM recurring_invoice_lines
		WHERE recurring_id = $1
		ORDER BY line_number
	`, recurringID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring lines: %w", err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.Category, &l.Description, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan recurring line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
