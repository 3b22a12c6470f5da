package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butter-invoicing/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "failed to connect to test database")

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_lines, invoices, recurring_invoice_lines, recurring_invoices,
			expenses, transactions, clients CASCADE;
		UPDATE settings SET webhook_url = '' WHERE id = 1;
	`)
	require.NoError(t, err, "failed to reset test database")

	return pool
}

func seedClient(t *testing.T, pool *pgxpool.Pool, name string) *core.Client {
	t.Helper()
	client, err := core.NewClientService(pool).CreateClient(context.Background(), core.ClientInput{
		Name:        name,
		ContactName: "Jordan Lee",
		Email:       "jordan@example.com",
	})
	require.NoError(t, err)
	return client
}

func seedMonthlyProfile(t *testing.T, pool *pgxpool.Pool, clientID, startDate string) *core.RecurringInvoice {
	t.Helper()
	profile, err := core.NewRecurringService(pool).CreateProfile(context.Background(), core.RecurringInvoiceInput{
		ClientID:     clientID,
		StartDate:    startDate,
		Frequency:    core.Monthly,
		PaymentTerms: 14,
		IncludeGST:   true,
		Lines: []core.LineItem{
			{Category: "Services", Description: "Monthly retainer", Quantity: dec("1"), UnitPrice: dec("1500")},
		},
	})
	require.NoError(t, err)
	return profile
}

func TestScheduler_MaterializesDueProfile(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "Acme Corp!!")
	profile := seedMonthlyProfile(t, pool, client.ID, "2024-03-01")

	scheduler := core.NewScheduler(pool, nil)
	result, err := scheduler.Run(ctx, "2024-03-01")
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "INV-ACME-0001", result.Created[0].InvoiceNumber)

	inv, err := core.NewInvoiceService(pool).GetInvoice(ctx, result.Created[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceSent, inv.Status)
	assert.Equal(t, "2024-03-01", inv.IssueDate)
	assert.Equal(t, "2024-03-15", inv.DueDate)
	assert.Equal(t, "1650.00", inv.Total.StringFixed(2))
	require.NotNil(t, inv.SourceProfileID)
	assert.Equal(t, profile.ID, *inv.SourceProfileID)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "Monthly retainer", inv.Lines[0].Description)

	// The run date advanced exactly one period.
	updated, err := core.NewRecurringService(pool).GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", updated.NextRunDate)

	// A second run on the same day finds nothing due.
	again, err := scheduler.Run(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Processed)
	assert.Empty(t, again.Created)
}

func TestScheduler_RetryAfterCrashDoesNotDuplicate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "Globex")
	profile := seedMonthlyProfile(t, pool, client.ID, "2024-03-01")

	scheduler := core.NewScheduler(pool, nil)
	_, err := scheduler.Run(ctx, "2024-03-01")
	require.NoError(t, err)

	// Simulate a crash between the invoice insert and the run-date
	// advancement by winding the run date back.
	_, err = pool.Exec(ctx,
		"UPDATE recurring_invoices SET next_run_date = '2024-03-01' WHERE id = $1", profile.ID)
	require.NoError(t, err)

	result, err := scheduler.Run(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Created)

	var count int
	err = pool.QueryRow(ctx,
		"SELECT count(*) FROM invoices WHERE source_profile_id = $1", profile.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "retry must not create a second invoice for the same issue date")

	// The retry still unwedged the profile.
	updated, err := core.NewRecurringService(pool).GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", updated.NextRunDate)
}

func TestScheduler_MissingClientDoesNotBlockBatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orphanClient := seedClient(t, pool, "Doomed Pty Ltd")
	orphanProfile := seedMonthlyProfile(t, pool, orphanClient.ID, "2024-03-01")
	healthy := seedClient(t, pool, "Initech")
	seedMonthlyProfile(t, pool, healthy.ID, "2024-03-01")

	require.NoError(t, core.NewClientService(pool).DeleteClient(ctx, orphanClient.ID))

	result, err := core.NewScheduler(pool, nil).Run(ctx, "2024-03-01")
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "INV-INIT-0001", result.Created[0].InvoiceNumber)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, orphanProfile.ID, result.Errors[0].ProfileID)
}

func TestScheduler_PausedProfileIsIgnored(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "Hooli")
	profile := seedMonthlyProfile(t, pool, client.ID, "2024-03-01")
	_, err := core.NewRecurringService(pool).PauseProfile(ctx, profile.ID)
	require.NoError(t, err)

	result, err := core.NewScheduler(pool, nil).Run(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, result.Created)
}

func TestScheduler_NumberingIsSequentialPerClient(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "Acme Corp")
	other := seedClient(t, pool, "Globex")
	invoices := core.NewInvoiceService(pool)

	lines := []core.LineItem{{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")}}
	first, err := invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID, Status: core.InvoiceDraft, Lines: lines})
	require.NoError(t, err)
	second, err := invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID, Status: core.InvoiceDraft, Lines: lines})
	require.NoError(t, err)
	foreign, err := invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: other.ID, Status: core.InvoiceDraft, Lines: lines})
	require.NoError(t, err)

	assert.Equal(t, "INV-ACME-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-ACME-0002", second.InvoiceNumber)
	assert.Equal(t, "INV-GLOB-0001", foreign.InvoiceNumber, "sequences are scoped per client")
}
