package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"butter-invoicing/internal/app"
	"butter-invoicing/internal/core"
)

// newSeedCommand loads a small demo data set for local development.
func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo clients, a recurring profile and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			client, err := svc.CreateClient(ctx, app.CreateClientRequest{
				Name:        "Acme Corp",
				ContactName: "Jordan Lee",
				Email:       "accounts@acme.example",
			})
			if err != nil {
				return err
			}

			today := time.Now().Format(core.DateLayout)
			profile, err := svc.CreateRecurringProfile(ctx, app.CreateRecurringRequest{
				ClientID:     client.Client.ID,
				StartDate:    today,
				Frequency:    string(core.Monthly),
				PaymentTerms: 14,
				IncludeGST:   true,
				Lines: []app.LineItemInput{
					{Category: "Services", Description: "Monthly retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1500)},
				},
			})
			if err != nil {
				return err
			}

			expenses := []app.CreateExpenseRequest{
				{Category: "Software", Description: "Adobe subscription", Amount: decimal.RequireFromString("89.99"), Date: today},
				{Category: "Hosting", Description: "VPS", Amount: decimal.RequireFromString("44.00"), Date: today},
			}
			for _, e := range expenses {
				if _, err := svc.CreateExpense(ctx, e); err != nil {
					return err
				}
			}

			fmt.Printf("Seeded client %s, recurring profile %s and %d expense(s)\n",
				client.Client.Name, profile.Profile.ID, len(expenses))
			return nil
		},
	}
}
