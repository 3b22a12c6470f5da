package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceInput holds the fields for creating an invoice by direct entry.
// Subtotal, tax and total are always recomputed server-side from the lines.
type InvoiceInput struct {
	ClientID     string
	IssueDate    string // YYYY-MM-DD; empty means today
	PaymentTerms int    // days until due
	Status       InvoiceStatus
	IncludeGST   bool
	Lines        []LineItem
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	ClientID *string
}

// InvoiceService manages invoices and their status lifecycle. Status changes
// go through the typed transition table; the Paid transition triggered by
// reconciliation lives in ReconcileService.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// UpdateStatus applies one transition from the allowed table
	// (Draft→Sent, Sent→Paid, Sent→Overdue, Overdue→Paid).
	UpdateStatus(ctx context.Context, id string, next InvoiceStatus) (*Invoice, error)

	// MarkOverdue flips every Sent invoice whose due date has passed to
	// Overdue and returns the number of invoices affected.
	MarkOverdue(ctx context.Context, today string) (int, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

const defaultPaymentTerms = 14

func (s *invoiceService) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	if input.ClientID == "" {
		return nil, fmt.Errorf("invoice requires a client: %w", ErrValidation)
	}
	if input.Status == "" {
		input.Status = InvoiceDraft
	}
	if input.Status != InvoiceDraft && input.Status != InvoiceSent {
		return nil, fmt.Errorf("new invoices must be Draft or Sent, got %s: %w", input.Status, ErrValidation)
	}
	for i, l := range input.Lines {
		if l.Quantity.IsNegative() || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d: quantity and unit price must be non-negative: %w", i+1, ErrValidation)
		}
	}

	issueDate := input.IssueDate
	if issueDate == "" {
		issueDate = time.Now().Format(DateLayout)
	}
	issued, err := time.Parse(DateLayout, issueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid issue date %q: %w", input.IssueDate, ErrValidation)
	}
	terms := input.PaymentTerms
	if terms <= 0 {
		terms = defaultPaymentTerms
	}
	dueDate := issued.AddDate(0, 0, terms).Format(DateLayout)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientName string
	err = tx.QueryRow(ctx, "SELECT name FROM clients WHERE id = $1", input.ClientID).Scan(&clientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", input.ClientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve client %s: %w", input.ClientID, err)
	}

	numbers, err := clientInvoiceNumbersTx(ctx, tx, input.ClientID)
	if err != nil {
		return nil, err
	}

	subtotal, gst, total := ComputeTotals(input.Lines, input.IncludeGST)
	inv := &Invoice{
		ClientID:      input.ClientID,
		InvoiceNumber: NextInvoiceNumber(clientName, numbers),
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        input.Status,
		Subtotal:      subtotal,
		Tax:           gst,
		Total:         total,
		IncludeGST:    input.IncludeGST,
		Lines:         input.Lines,
	}

	if err := insertInvoiceTx(ctx, tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice creation: %w", err)
	}
	return s.GetInvoice(ctx, inv.ID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv := &Invoice{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, invoice_number, issue_date::text, due_date::text,
		       status, subtotal, tax, total, include_gst, source_profile_id, created_at
		FROM invoices
		WHERE id = $1
	`, id).Scan(
		&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
		&inv.Status, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.IncludeGST,
		&inv.SourceProfileID, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}

	lines, err := fetchInvoiceLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *invoiceService) GetInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	query := `
		SELECT id, client_id, invoice_number, issue_date::text, due_date::text,
		       status, subtotal, tax, total, include_gst, source_profile_id, created_at
		FROM invoices
		WHERE 1=1
	`
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	query += " ORDER BY issue_date DESC, invoice_number DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
			&inv.Status, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.IncludeGST,
			&inv.SourceProfileID, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id string, next InvoiceStatus) (*Invoice, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown invoice status %q: %w", next, ErrValidation)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current InvoiceStatus
	err = tx.QueryRow(ctx, "SELECT status FROM invoices WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("invoice %s cannot move %s → %s: %w", id, current, next, ErrInvalidTransition)
	}

	if _, err := tx.Exec(ctx, "UPDATE invoices SET status = $1 WHERE id = $2", next, id); err != nil {
		return nil, fmt.Errorf("failed to update invoice %s status: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) MarkOverdue(ctx context.Context, today string) (int, error) {
	if _, err := time.Parse(DateLayout, today); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", today, ErrValidation)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $1
		WHERE status = $2 AND due_date < $3
	`, InvoiceOverdue, InvoiceSent, today)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ── shared tx helpers ────────────────────────────────────────────────────────

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertInvoiceTx inserts an invoice header and its lines inside the
// caller's transaction, filling inv.ID and inv.CreatedAt. A duplicate
// invoice number surfaces as ErrConflict so callers can retry allocation.
func insertInvoiceTx(ctx context.Context, tx pgx.Tx, inv *Invoice) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO invoices (client_id, invoice_number, issue_date, due_date, status,
		                      subtotal, tax, total, include_gst, source_profile_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, inv.ClientID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate, inv.Status,
		inv.Subtotal, inv.Tax, inv.Total, inv.IncludeGST, inv.SourceProfileID,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %s already exists: %w", inv.InvoiceNumber, ErrConflict)
		}
		return fmt.Errorf("failed to insert invoice %s: %w", inv.InvoiceNumber, err)
	}

	for i, l := range inv.Lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_number, category, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, inv.ID, i+1, l.Category, l.Description, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

// clientInvoiceNumbersTx returns every invoice number belonging to a client,
// for sequence allocation.
func clientInvoiceNumbersTx(ctx context.Context, q pgxQuerier, clientID string) ([]string, error) {
	rows, err := q.Query(ctx, "SELECT invoice_number FROM invoices WHERE client_id = $1", clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan invoice number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func fetchInvoiceLinesQ(ctx context.Context, q pgxQuerier, invoiceID string) ([]LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT category, description, quantity, unit_price
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.Category, &l.Description, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
