package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for all calendar dates.
const DateLayout = "2006-01-02"

// GSTRate is the fixed 10% GST applied when an invoice opts in. Not
// user-configurable.
var GSTRate = decimal.New(1, -1)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// invoiceTransitions is the allowed transition table. Paid is terminal;
// arbitrary overwrites (e.g. resetting a Paid invoice) are rejected.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoiceSent},
	InvoiceSent:    {InvoicePaid, InvoiceOverdue},
	InvoiceOverdue: {InvoicePaid},
	InvoicePaid:    {},
}

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s → next is allowed.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Frequency string

const (
	Monthly   Frequency = "Monthly"
	Quarterly Frequency = "Quarterly"
	Yearly    Frequency = "Yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == Monthly || f == Quarterly || f == Yearly
}

type ProfileStatus string

const (
	ProfileActive ProfileStatus = "Active"
	ProfilePaused ProfileStatus = "Paused"
)

type TransactionType string

const (
	Credit TransactionType = "Credit"
	Debit  TransactionType = "Debit"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// LineItem is one row of an invoice or recurring profile.
type LineItem struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName *string   `json:"contact_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Invoice struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	IssueDate       string          `json:"issue_date"`
	DueDate         string          `json:"due_date"`
	Status          InvoiceStatus   `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	IncludeGST      bool            `json:"include_gst"`
	SourceProfileID *string         `json:"source_profile_id,omitempty"`
	Lines           []LineItem      `json:"line_items"`
	CreatedAt       time.Time       `json:"created_at"`
}

type RecurringInvoice struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	StartDate    string          `json:"start_date"`
	Frequency    Frequency       `json:"frequency"`
	PaymentTerms int             `json:"payment_terms"`
	NextRunDate  string          `json:"next_run_date"`
	Status       ProfileStatus   `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	IncludeGST   bool            `json:"include_gst"`
	Lines        []LineItem      `json:"line_items"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Expense struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	IsPaid      bool            `json:"is_paid"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Transaction is a normalized bank-feed record. Append-only except for the
// reconciled flag.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Currency    *string         `json:"currency,omitempty"`
	Reconciled  bool            `json:"reconciled"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Settings struct {
	WebhookURL    string    `json:"webhook_url"`
	EmailTemplate string    `json:"email_template"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputeTotals derives subtotal, tax and total from line items. Tax is the
// fixed GST rate when includeGST is set, rounded to cents.
func ComputeTotals(lines []LineItem, includeGST bool) (subtotal, tax, total decimal.Decimal) {
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	subtotal = subtotal.Round(2)
	if includeGST {
		tax = subtotal.Mul(GSTRate).Round(2)
	}
	total = subtotal.Add(tax)
	return subtotal, tax, total
}
