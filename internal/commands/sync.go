package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull recent transfers from the Wise API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := svc.SyncBankTransactions(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d transaction(s), skipped %d duplicate(s)\n", result.Inserted, result.Skipped)
			return nil
		},
	}
}
