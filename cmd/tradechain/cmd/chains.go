package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains <account>",
	Short: "List an account's order chains",
	Long: `List the chains built for an account, one line per chain.

Examples:
  tradechain chains 5WX12345
  tradechain chains show IBIT_20250103_a1b2c3d4`,
	Args: cobra.ExactArgs(1),
	RunE: runChains,
}

var chainShowCmd = &cobra.Command{
	Use:   "show <chain-id>",
	Short: "Show one chain with its member orders",
	Args:  cobra.ExactArgs(1),
	RunE:  runChainShow,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
	chainsCmd.AddCommand(chainShowCmd)
}

func runChains(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	chains, err := store.ListChains(args[0])
	if err != nil {
		return fmt.Errorf("list chains: %w", err)
	}

	for _, c := range chains {
		fmt.Printf("%-40s %-8s %-6s orders=%-3d realized=%10.2f unrealized=%10.2f total=%10.2f\n",
			c.ID, c.Underlying, c.Status, len(c.Orders),
			c.RealizedPnL, c.UnrealizedPnL, c.TotalPnL)
	}
	fmt.Printf("%d chains\n", len(chains))
	return nil
}

func runChainShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.GetChain(args[0])
	if err != nil {
		return fmt.Errorf("get chain: %w", err)
	}

	fmt.Printf("Chain %s (%s, account %s)\n", c.ID, c.Status, c.Account)
	fmt.Printf("  Realized: %.2f  Unrealized: %.2f  Total: %.2f\n",
		c.RealizedPnL, c.UnrealizedPnL, c.TotalPnL)
	for i, o := range c.Orders {
		fmt.Printf("  %d. %s  %s  %-8s qty=%.0f pnl=%.2f\n",
			i+1, o.Date.Format("2006-01-02"), o.ID, o.Type, o.TotalQuantity, o.TotalPnL)
		for _, p := range o.Positions {
			fmt.Printf("       %-30s qty=%+.0f %-6s open=%s close=%s pnl=%.2f\n",
				p.Key.String(), p.Quantity, p.Status,
				p.OpeningAction, p.ClosingAction, p.PnL)
		}
	}
	return nil
}
