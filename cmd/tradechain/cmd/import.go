package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradechain/journal"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <transactions.csv>",
	Short: "Import a broker transaction export",
	Long: `Import a CSV transaction export into the journal.

Transactions already in the journal (matched by id) are skipped, so
re-importing an overlapping export is safe.

Example:
  tradechain import exports/2025-01.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	txs, err := journal.ImportCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	inserted, err := store.SaveTransactions(txs)
	if err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}

	fmt.Printf("Imported %d transactions (%d new, %d already present)\n",
		len(txs), inserted, len(txs)-inserted)
	return nil
}
