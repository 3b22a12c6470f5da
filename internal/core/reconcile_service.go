package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MatchSuggestions holds the exact-amount candidates for one unreconciled
// transaction. Credits propose unpaid invoices, debits propose unpaid
// expenses; the other slice is always empty.
type MatchSuggestions struct {
	Transaction Transaction `json:"transaction"`
	Invoices    []Invoice   `json:"invoices"`
	Expenses    []Expense   `json:"expenses"`
}

type ReconcileService interface {
	// SuggestMatches lists open records whose amount equals the
	// transaction's amount exactly. No fuzzy or partial matching.
	SuggestMatches(ctx context.Context, transactionID string) (*MatchSuggestions, error)
	// ConfirmInvoiceMatch marks a credit transaction reconciled and the
	// invoice Paid in one transaction.
	ConfirmInvoiceMatch(ctx context.Context, transactionID, invoiceID string) error
	// ConfirmExpenseMatch marks a debit transaction reconciled and the
	// expense paid in one transaction.
	ConfirmExpenseMatch(ctx context.Context, transactionID, expenseID string) error
}

type reconcileService struct {
	pool *pgxpool.Pool
}

func NewReconcileService(pool *pgxpool.Pool) ReconcileService {
	return &reconcileService{pool: pool}
}

func (s *reconcileService) SuggestMatches(ctx context.Context, transactionID string) (*MatchSuggestions, error) {
	t := &Transaction{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, date::text, amount, type, description, currency, reconciled, created_at
		FROM transactions WHERE id = $1
	`, transactionID).Scan(&t.ID, &t.Date, &t.Amount, &t.Type, &t.Description, &t.Currency, &t.Reconciled, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", transactionID, err)
	}
	if t.Reconciled {
		return nil, fmt.Errorf("transaction %s already reconciled: %w", transactionID, ErrConflict)
	}

	suggestions := &MatchSuggestions{Transaction: *t}
	switch t.Type {
	case Credit:
		invoices, err := s.unpaidInvoicesByTotal(ctx, t.Amount)
		if err != nil {
			return nil, err
		}
		suggestions.Invoices = invoices
	case Debit:
		expenses, err := s.unpaidExpensesByAmount(ctx, t.Amount)
		if err != nil {
			return nil, err
		}
		suggestions.Expenses = expenses
	}
	return suggestions, nil
}

func (s *reconcileService) unpaidInvoicesByTotal(ctx context.Context, amount decimal.Decimal) ([]Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, invoice_number, issue_date::text, due_date::text, status,
		       subtotal, tax, total, include_gst, source_profile_id, created_at
		FROM invoices
		WHERE status IN ($1, $2) AND total = $3
		ORDER BY issue_date
	`, InvoiceSent, InvoiceOverdue, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate, &inv.Status,
			&inv.Subtotal, &inv.Tax, &inv.Total, &inv.IncludeGST, &inv.SourceProfileID, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candidate invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate invoices: %w", err)
	}
	return invoices, nil
}

func (s *reconcileService) unpaidExpensesByAmount(ctx context.Context, amount decimal.Decimal) ([]Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, description, amount, date::text, is_paid, created_at
		FROM expenses
		WHERE is_paid = FALSE AND amount = $1
		ORDER BY date
	`, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.Date, &e.IsPaid, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate expenses: %w", err)
	}
	return expenses, nil
}

// lockTransactionTx loads and row-locks an unreconciled transaction of the
// expected type.
func lockTransactionTx(ctx context.Context, tx pgx.Tx, id string, want TransactionType) (*Transaction, error) {
	t := &Transaction{}
	err := tx.QueryRow(ctx, `
		SELECT id, date::text, amount, type, description, currency, reconciled, created_at
		FROM transactions WHERE id = $1
		FOR UPDATE
	`, id).Scan(&t.ID, &t.Date, &t.Amount, &t.Type, &t.Description, &t.Currency, &t.Reconciled, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", id, err)
	}
	if t.Reconciled {
		return nil, fmt.Errorf("transaction %s already reconciled: %w", id, ErrConflict)
	}
	if t.Type != want {
		return nil, fmt.Errorf("transaction %s is %s, expected %s: %w", id, t.Type, want, ErrValidation)
	}
	return t, nil
}

func (s *reconcileService) ConfirmInvoiceMatch(ctx context.Context, transactionID, invoiceID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := lockTransactionTx(ctx, tx, transactionID, Credit)
	if err != nil {
		return err
	}

	var status InvoiceStatus
	var total decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT status, total FROM invoices WHERE id = $1 FOR UPDATE", invoiceID,
	).Scan(&status, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock invoice %s: %w", invoiceID, err)
	}
	if !total.Equal(t.Amount) {
		return fmt.Errorf("invoice total %s does not equal transaction amount %s: %w",
			total, t.Amount, ErrValidation)
	}
	if !status.CanTransitionTo(InvoicePaid) {
		return fmt.Errorf("cannot mark %s invoice paid: %w", status, ErrInvalidTransition)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $1 WHERE id = $2", InvoicePaid, invoiceID,
	); err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE transactions SET reconciled = TRUE WHERE id = $1", transactionID,
	); err != nil {
		return fmt.Errorf("failed to mark transaction reconciled: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return nil
}

func (s *reconcileService) ConfirmExpenseMatch(ctx context.Context, transactionID, expenseID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := lockTransactionTx(ctx, tx, transactionID, Debit)
	if err != nil {
		return err
	}

	var isPaid bool
	var amount decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT is_paid, amount FROM expenses WHERE id = $1 FOR UPDATE", expenseID,
	).Scan(&isPaid, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock expense %s: %w", expenseID, err)
	}
	if isPaid {
		return fmt.Errorf("expense %s already paid: %w", expenseID, ErrConflict)
	}
	if !amount.Equal(t.Amount) {
		return fmt.Errorf("expense amount %s does not equal transaction amount %s: %w",
			amount, t.Amount, ErrValidation)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE expenses SET is_paid = TRUE WHERE id = $1", expenseID,
	); err != nil {
		return fmt.Errorf("failed to mark expense paid: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE transactions SET reconciled = TRUE WHERE id = $1", transactionID,
	); err != nil {
		return fmt.Errorf("failed to mark transaction reconciled: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return nil
}
