package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"butter-invoicing/internal/core"
)

func newScheduleCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Materialize invoices from due recurring profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if date == "" {
				date = time.Now().Format(core.DateLayout)
			}
			result, err := svc.RunScheduler(ctx, date)
			if err != nil {
				return err
			}

			fmt.Printf("Processed %d profile(s), skipped %d\n", result.Processed, result.Skipped)
			for _, c := range result.Created {
				fmt.Printf("  %s  %s  %s\n", c.InvoiceNumber, c.ClientName, c.Total.StringFixed(2))
			}
			for _, e := range result.Errors {
				fmt.Printf("  error on profile %s: %s\n", e.ProfileID, e.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "run date as YYYY-MM-DD (default today)")

	return cmd
}
