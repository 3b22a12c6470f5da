package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	lines := []LineItem{
		{Description: "Consulting", Quantity: dec("10"), UnitPrice: dec("150")},
		{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("49.95")},
	}

	t.Run("with GST", func(t *testing.T) {
		subtotal, tax, total := ComputeTotals(lines, true)
		assert.Equal(t, "1549.95", subtotal.StringFixed(2))
		assert.Equal(t, "155.00", tax.StringFixed(2))
		assert.Equal(t, "1704.95", total.StringFixed(2))
	})

	t.Run("without GST", func(t *testing.T) {
		subtotal, tax, total := ComputeTotals(lines, false)
		assert.Equal(t, "1549.95", subtotal.StringFixed(2))
		assert.True(t, tax.IsZero())
		assert.True(t, total.Equal(subtotal))
	})

	t.Run("tax rounds to cents", func(t *testing.T) {
		_, tax, _ := ComputeTotals([]LineItem{
			{Quantity: dec("1"), UnitPrice: dec("10.05")},
		}, true)
		assert.Equal(t, "1.01", tax.StringFixed(2))
	})

	t.Run("no lines", func(t *testing.T) {
		subtotal, tax, total := ComputeTotals(nil, true)
		assert.True(t, subtotal.IsZero())
		assert.True(t, tax.IsZero())
		assert.True(t, total.IsZero())
	})
}

func TestInvoiceStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to InvoiceStatus }{
		{InvoiceDraft, InvoiceSent},
		{InvoiceSent, InvoicePaid},
		{InvoiceSent, InvoiceOverdue},
		{InvoiceOverdue, InvoicePaid},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to InvoiceStatus }{
		{InvoiceDraft, InvoicePaid},
		{InvoiceDraft, InvoiceOverdue},
		{InvoicePaid, InvoiceSent},
		{InvoicePaid, InvoiceOverdue},
		{InvoiceOverdue, InvoiceSent},
		{InvoiceSent, InvoiceDraft},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestFrequencyValid(t *testing.T) {
	assert.True(t, Monthly.Valid())
	assert.True(t, Quarterly.Valid())
	assert.True(t, Yearly.Valid())
	assert.False(t, Frequency("Weekly").Valid())
	assert.False(t, Frequency("").Valid())
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, Credit.Valid())
	assert.True(t, Debit.Valid())
	assert.False(t, TransactionType("Transfer").Valid())
	assert.False(t, TransactionType("").Valid())
}
