package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Input validation runs before any database access, so a zero-value
// service is enough to exercise the rejection paths.
func TestCreateProfileRejectsBadInput(t *testing.T) {
	svc := &recurringService{}
	ctx := context.Background()

	tests := []struct {
		name  string
		input RecurringInvoiceInput
	}{
		{
			name:  "missing client",
			input: RecurringInvoiceInput{Frequency: Monthly, PaymentTerms: 14},
		},
		{
			name:  "unknown frequency",
			input: RecurringInvoiceInput{ClientID: "c1", Frequency: "Weekly", PaymentTerms: 14},
		},
		{
			name:  "non-positive terms",
			input: RecurringInvoiceInput{ClientID: "c1", Frequency: Monthly, PaymentTerms: 0},
		},
		{
			name: "negative quantity",
			input: RecurringInvoiceInput{
				ClientID: "c1", Frequency: Monthly, PaymentTerms: 14,
				Lines: []LineItem{{Description: "Retainer", Quantity: decimal.NewFromInt(-1), UnitPrice: decimal.NewFromInt(100)}},
			},
		},
		{
			name: "negative unit price",
			input: RecurringInvoiceInput{
				ClientID: "c1", Frequency: Monthly, PaymentTerms: 14,
				Lines: []LineItem{{Description: "Retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-100)}},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProfile(ctx, tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
