package app

import "butter-invoicing/internal/core"

// ClientResult is returned by single-client operations.
type ClientResult struct {
	Client *core.Client `json:"client"`
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client `json:"clients"`
}

// InvoiceResult is returned by invoice lifecycle operations.
type InvoiceResult struct {
	Invoice *core.Invoice `json:"invoice"`
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}

// OverdueResult is returned by MarkOverdueInvoices.
type OverdueResult struct {
	Marked int `json:"marked"`
}

// RecurringResult is returned by recurring-profile operations.
type RecurringResult struct {
	Profile *core.RecurringInvoice `json:"profile"`
}

// RecurringListResult is returned by ListRecurringProfiles.
type RecurringListResult struct {
	Profiles []core.RecurringInvoice `json:"profiles"`
}

// ImportResult is returned by CSV import and bank sync. Filtered counts
// rows dropped as internal transfers before the merge.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
}

// TransactionResult is returned by GetTransaction.
type TransactionResult struct {
	Transaction *core.Transaction `json:"transaction"`
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction `json:"transactions"`
}

// ExpenseResult is returned by CreateExpense.
type ExpenseResult struct {
	Expense *core.Expense `json:"expense"`
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Expenses []core.Expense `json:"expenses"`
}
