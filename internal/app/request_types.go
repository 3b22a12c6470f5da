package app

import (
	"github.com/shopspring/decimal"
)

// CreateClientRequest is the input for registering a client.
type CreateClientRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

// UpdateClientRequest replaces a client's contact details. Empty strings
// clear the stored value.
type UpdateClientRequest struct {
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

// LineItemInput is one line within an invoice or recurring profile request.
type LineItemInput struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest is the input for a manual invoice. IssueDate defaults
// to today and Status to Draft when empty.
type CreateInvoiceRequest struct {
	ClientID     string          `json:"client_id"`
	IssueDate    string          `json:"issue_date"`
	Status       string          `json:"status"`
	PaymentTerms int             `json:"payment_terms"`
	IncludeGST   bool            `json:"include_gst"`
	Lines        []LineItemInput `json:"line_items"`
}

// CreateRecurringRequest is the input for a recurring invoice profile.
type CreateRecurringRequest struct {
	ClientID     string          `json:"client_id"`
	StartDate    string          `json:"start_date"`
	Frequency    string          `json:"frequency"`
	PaymentTerms int             `json:"payment_terms"`
	IncludeGST   bool            `json:"include_gst"`
	Lines        []LineItemInput `json:"line_items"`
}

// CreateExpenseRequest is the input for recording an expense.
type CreateExpenseRequest struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}
