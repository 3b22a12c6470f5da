// Package commands implements the butter CLI.
package commands

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"butter-invoicing/internal/app"
	"butter-invoicing/internal/bank"
	"butter-invoicing/internal/core"
	"butter-invoicing/internal/db"
	"butter-invoicing/internal/delivery"
	"butter-invoicing/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "butter",
		Short: "Invoicing automation for small businesses",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logger.Setup()
		},
	}

	rootCmd.AddCommand(newScheduleCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newOverdueCommand())
	rootCmd.AddCommand(newTaxCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}

// newAppService wires the full service graph for one CLI invocation. The
// caller owns the returned pool.
func newAppService(ctx context.Context) (app.ApplicationService, *pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	settingsService := core.NewSettingsService(pool)
	notifier := delivery.NewWebhookNotifier(settingsService)

	var bankFeed app.BankFeed
	if os.Getenv("WISE_API_KEY") != "" {
		wise, err := bank.NewWiseClient()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		bankFeed = wise
	}

	svc := app.NewAppService(
		core.NewClientService(pool),
		core.NewInvoiceService(pool),
		core.NewRecurringService(pool),
		core.NewExpenseService(pool),
		core.NewTransactionService(pool),
		core.NewReconcileService(pool),
		settingsService,
		core.NewReportingService(pool),
		core.NewScheduler(pool, notifier),
		bankFeed,
	)
	return svc, pool, nil
}
