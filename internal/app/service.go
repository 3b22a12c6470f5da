package app

import (
	"context"
	"io"
	"time"

	"butter-invoicing/internal/core"
)

// BankFeed pulls recent transactions from an external bank API. The Wise
// client satisfies this; tests substitute a stub.
type BankFeed interface {
	FetchTransactions(ctx context.Context, now time.Time) ([]core.Transaction, error)
}

// ApplicationService is the single interface all adapters (HTTP, CLI) call.
// It decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// CreateClient registers a new client.
	CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResult, error)

	// ListClients returns all clients ordered by name.
	ListClients(ctx context.Context) (*ClientListResult, error)

	// GetClient returns one client by id.
	GetClient(ctx context.Context, id string) (*ClientResult, error)

	// UpdateClientContact updates contact person and email; the client name
	// is immutable because invoice numbering is derived from it.
	UpdateClientContact(ctx context.Context, id string, req UpdateClientRequest) (*ClientResult, error)

	// DeleteClient removes a client. Existing invoices keep their client_id.
	DeleteClient(ctx context.Context, id string) error

	// CreateInvoice creates a manual invoice with a freshly allocated number.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)

	// ListInvoices returns invoices, optionally filtered by status or client.
	ListInvoices(ctx context.Context, status, clientID string) (*InvoiceListResult, error)

	// GetInvoice returns one invoice with its line items.
	GetInvoice(ctx context.Context, id string) (*InvoiceResult, error)

	// UpdateInvoiceStatus applies a lifecycle transition (send, pay).
	UpdateInvoiceStatus(ctx context.Context, id string, status core.InvoiceStatus) (*InvoiceResult, error)

	// MarkOverdueInvoices flips Sent invoices past their due date to Overdue.
	MarkOverdueInvoices(ctx context.Context) (*OverdueResult, error)

	// CreateRecurringProfile registers a recurring invoice template.
	CreateRecurringProfile(ctx context.Context, req CreateRecurringRequest) (*RecurringResult, error)

	// ListRecurringProfiles returns all recurring profiles.
	ListRecurringProfiles(ctx context.Context) (*RecurringListResult, error)

	// GetRecurringProfile returns one profile with its line items.
	GetRecurringProfile(ctx context.Context, id string) (*RecurringResult, error)

	// PauseRecurringProfile stops a profile from being scheduled.
	PauseRecurringProfile(ctx context.Context, id string) (*RecurringResult, error)

	// ResumeRecurringProfile reactivates a paused profile. The next run date
	// is left as stored, so overdue periods materialize on the next run.
	ResumeRecurringProfile(ctx context.Context, id string) (*RecurringResult, error)

	// RunScheduler materializes invoices for every profile due on or before
	// today (YYYY-MM-DD).
	RunScheduler(ctx context.Context, today string) (*core.RunResult, error)

	// ImportTransactionsCSV parses a bank CSV export and merges the rows,
	// skipping ids already imported.
	ImportTransactionsCSV(ctx context.Context, r io.Reader) (*ImportResult, error)

	// SyncBankTransactions pulls recent transfers from the bank feed and
	// merges them.
	SyncBankTransactions(ctx context.Context) (*ImportResult, error)

	// ListTransactions returns all bank transactions, newest first.
	ListTransactions(ctx context.Context) (*TransactionListResult, error)

	// GetTransaction returns one bank transaction.
	GetTransaction(ctx context.Context, id string) (*TransactionResult, error)

	// SuggestMatches proposes exact-amount reconciliation candidates for an
	// unreconciled transaction.
	SuggestMatches(ctx context.Context, transactionID string) (*core.MatchSuggestions, error)

	// ConfirmInvoiceMatch reconciles a credit against an invoice.
	ConfirmInvoiceMatch(ctx context.Context, transactionID, invoiceID string) error

	// ConfirmExpenseMatch reconciles a debit against an expense.
	ConfirmExpenseMatch(ctx context.Context, transactionID, expenseID string) error

	// CreateExpense records a business expense.
	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResult, error)

	// ListExpenses returns expenses, optionally only unpaid ones.
	ListExpenses(ctx context.Context, unpaidOnly bool) (*ExpenseListResult, error)

	// GetSettings returns the delivery settings.
	GetSettings(ctx context.Context) (*core.Settings, error)

	// UpdateSettings patches webhook URL and/or email template.
	UpdateSettings(ctx context.Context, req core.SettingsInput) (*core.Settings, error)

	// TaxSummary reports the financial year ending 30 June of endYear.
	TaxSummary(ctx context.Context, endYear int) (*core.TaxSummary, error)
}
