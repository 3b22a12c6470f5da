package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butter-invoicing/internal/core"
)

func TestTaxSummary(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "Acme Corp")
	invoices := core.NewInvoiceService(pool)
	lines := []core.LineItem{{Description: "Work", Quantity: dec("1"), UnitPrice: dec("1000")}}

	// Inside FY2024 (1 Jul 2023 – 30 Jun 2024), GST-inclusive.
	_, err := invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID: client.ID, IssueDate: "2023-08-15", Status: core.InvoiceSent, IncludeGST: true, Lines: lines,
	})
	require.NoError(t, err)

	// Draft invoices are excluded from income.
	_, err = invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID: client.ID, IssueDate: "2023-09-01", Status: core.InvoiceDraft, IncludeGST: true, Lines: lines,
	})
	require.NoError(t, err)

	// Outside the window.
	_, err = invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID: client.ID, IssueDate: "2024-07-01", Status: core.InvoiceSent, IncludeGST: true, Lines: lines,
	})
	require.NoError(t, err)

	expenses := core.NewExpenseService(pool)
	_, err = expenses.CreateExpense(ctx, core.ExpenseInput{
		Category: "Software", Description: "Licenses", Amount: dec("220"), Date: "2023-10-01",
	})
	require.NoError(t, err)
	_, err = expenses.CreateExpense(ctx, core.ExpenseInput{
		Category: "Hosting", Description: "Servers", Amount: dec("110"), Date: "2024-02-01",
	})
	require.NoError(t, err)

	summary, err := core.NewReportingService(pool).TaxSummary(ctx, 2024)
	require.NoError(t, err)

	assert.Equal(t, "FY2024", summary.FinancialYear)
	assert.Equal(t, "2023-07-01", summary.PeriodStart)
	assert.Equal(t, "2024-06-30", summary.PeriodEnd)
	assert.Equal(t, "1100.00", summary.Income.StringFixed(2))
	assert.Equal(t, "100.00", summary.GSTCollected.StringFixed(2))
	assert.Equal(t, "330.00", summary.Expenses.StringFixed(2))
	assert.Equal(t, "30.00", summary.GSTPaid.StringFixed(2), "GST paid is expenses divided by 11")
	assert.Equal(t, "770.00", summary.NetProfit.StringFixed(2))
	assert.Equal(t, "220.00", summary.ByCategory["Software"].StringFixed(2))
	assert.Equal(t, "110.00", summary.ByCategory["Hosting"].StringFixed(2))
}
