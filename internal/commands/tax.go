package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newTaxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tax <end-year>",
		Short: "Print the tax summary for a financial year (1 Jul to 30 Jun)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("end-year must be numeric: %w", err)
			}

			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			summary, err := svc.TaxSummary(ctx, year)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s to %s)\n", summary.FinancialYear, summary.PeriodStart, summary.PeriodEnd)
			fmt.Printf("  Income:        %s\n", summary.Income.StringFixed(2))
			fmt.Printf("  GST collected: %s\n", summary.GSTCollected.StringFixed(2))
			fmt.Printf("  Expenses:      %s\n", summary.Expenses.StringFixed(2))
			fmt.Printf("  GST paid:      %s\n", summary.GSTPaid.StringFixed(2))
			fmt.Printf("  Net profit:    %s\n", summary.NetProfit.StringFixed(2))

			if len(summary.ByCategory) > 0 {
				fmt.Println("  Expenses by category:")
				categories := make([]string, 0, len(summary.ByCategory))
				for c := range summary.ByCategory {
					categories = append(categories, c)
				}
				sort.Strings(categories)
				for _, c := range categories {
					fmt.Printf("    %-20s %s\n", c, summary.ByCategory[c].StringFixed(2))
				}
			}
			return nil
		},
	}
}
