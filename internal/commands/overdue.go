package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Mark sent invoices past their due date as overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := svc.MarkOverdueInvoices(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Marked %d invoice(s) overdue\n", result.Marked)
			return nil
		},
	}
}
