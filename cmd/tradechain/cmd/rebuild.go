package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradechain/engine"
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [account...]",
	Short: "Rebuild orders, chains and P&L from the transaction log",
	Long: `Rebuild derived state for one or more accounts.

For each account the full transaction log is reprocessed from scratch and the
previous orders, positions and chains are replaced in a single database
transaction. Rebuilding is the correction mechanism: fix or re-import the
transactions, rebuild, and the derived state follows.

With no arguments every account in the journal is rebuilt.

Example:
  tradechain rebuild 5WX12345`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	accounts := args
	if len(accounts) == 0 {
		accounts, err = store.Accounts()
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
	}

	eng := engine.NewWithWindow(cfg.Linking.Window())

	for _, account := range accounts {
		txs, err := store.LoadTransactions(account)
		if err != nil {
			return fmt.Errorf("load transactions for %s: %w", account, err)
		}

		res := eng.Reconcile(txs)
		run, err := store.ReplaceResult(account, res)
		if err != nil {
			return fmt.Errorf("commit rebuild for %s: %w", account, err)
		}

		fmt.Printf("%s: %d transactions -> %d orders, %d chains, %d orphans (run %s)\n",
			account, run.Transactions, run.Orders, run.Chains, run.Orphans, run.RunID)
	}
	return nil
}
