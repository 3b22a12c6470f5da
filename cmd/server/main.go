package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	webAdapter "butter-invoicing/internal/adapters/web"
	"butter-invoicing/internal/app"
	"butter-invoicing/internal/bank"
	"butter-invoicing/internal/core"
	"butter-invoicing/internal/db"
	"butter-invoicing/internal/delivery"
	"butter-invoicing/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()
	log := logger.WithComponent("server")

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	clientService := core.NewClientService(pool)
	invoiceService := core.NewInvoiceService(pool)
	recurringService := core.NewRecurringService(pool)
	expenseService := core.NewExpenseService(pool)
	transactionService := core.NewTransactionService(pool)
	reconcileService := core.NewReconcileService(pool)
	settingsService := core.NewSettingsService(pool)
	reportingService := core.NewReportingService(pool)

	notifier := delivery.NewWebhookNotifier(settingsService)
	scheduler := core.NewScheduler(pool, notifier)

	var bankFeed app.BankFeed
	if os.Getenv("WISE_API_KEY") != "" {
		wise, err := bank.NewWiseClient()
		if err != nil {
			log.Fatal().Err(err).Msg("wise client setup failed")
		}
		bankFeed = wise
	} else {
		log.Warn().Msg("WISE_API_KEY is not set, bank sync disabled")
	}

	svc := app.NewAppService(
		clientService, invoiceService, recurringService, expenseService,
		transactionService, reconcileService, settingsService, reportingService,
		scheduler, bankFeed,
	)

	if os.Getenv("SCHEDULER_DISABLED") != "true" {
		go runSchedulerLoop(ctx, svc, log)
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"))

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// runSchedulerLoop materializes due recurring invoices once at startup and
// then every 24 hours. Marking overdue invoices rides along on the same tick.
func runSchedulerLoop(ctx context.Context, svc app.ApplicationService, log zerolog.Logger) {
	tick := func() {
		today := time.Now().Format(core.DateLayout)
		result, err := svc.RunScheduler(ctx, today)
		if err != nil {
			log.Error().Err(err).Msg("scheduler run failed")
		} else {
			log.Info().
				Int("processed", result.Processed).
				Int("skipped", result.Skipped).
				Int("errors", len(result.Errors)).
				Msg("scheduler run complete")
		}
		if overdue, err := svc.MarkOverdueInvoices(ctx); err != nil {
			log.Error().Err(err).Msg("overdue sweep failed")
		} else if overdue.Marked > 0 {
			log.Info().Int("marked", overdue.Marked).Msg("invoices marked overdue")
		}
	}

	tick()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
