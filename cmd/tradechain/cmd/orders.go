package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect assembled orders",
	Long: `Inspect orders produced by the last rebuild.

Subcommands:
  show     - Show one order and its positions
  orphans  - List orders no chain claimed

Examples:
  tradechain orders show 41325031
  tradechain orders orphans 5WX12345`,
}

var orderShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order and its positions",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderShow,
}

var orderOrphansCmd = &cobra.Command{
	Use:   "orphans <account>",
	Short: "List orders no chain claimed",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderOrphans,
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(orderShowCmd)
	ordersCmd.AddCommand(orderOrphansCmd)
}

func runOrderShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	o, err := store.GetOrder(args[0])
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	fmt.Printf("Order %s (%s, account %s, %s)\n",
		o.ID, o.Type, o.Account, o.Date.Format("2006-01-02"))
	fmt.Printf("  Underlying: %s  Quantity: %.0f  P&L: %.2f\n",
		o.Underlying, o.TotalQuantity, o.TotalPnL)
	for _, p := range o.Positions {
		fmt.Printf("  %-30s qty=%+.0f %-6s open=%s close=%s pnl=%.2f\n",
			p.Key.String(), p.Quantity, p.Status,
			p.OpeningAction, p.ClosingAction, p.PnL)
	}
	return nil
}

func runOrderOrphans(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	orders, err := store.ListOrphanOrders(args[0])
	if err != nil {
		return fmt.Errorf("list orphans: %w", err)
	}

	for _, o := range orders {
		fmt.Printf("%s  %s  %-8s %-6s qty=%.0f\n",
			o.Date.Format("2006-01-02"), o.ID, o.Underlying, o.Type, o.TotalQuantity)
	}
	fmt.Printf("%d orphan orders\n", len(orders))
	return nil
}
