package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import bank transactions from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, pool, err := newAppService(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := svc.ImportTransactionsCSV(ctx, f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d transaction(s), skipped %d duplicate(s), filtered %d internal transfer(s)\n",
				result.Inserted, result.Skipped, result.Filtered)
			return nil
		},
	}
}
