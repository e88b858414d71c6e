package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rustyeddy/tradechain/config"
	"github.com/rustyeddy/tradechain/journal"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradechain",
	Short: "Rebuild order chains and P&L from a broker transaction log",
	Long: `Tradechain reconstructs trading history from raw broker transactions.

It provides tools for:
  - Importing transaction exports into a SQLite journal
  - Assembling fills into orders and consolidated positions
  - Linking rolls and closes into strategy chains
  - Splitting chain P&L into realized and unrealized
  - Inspecting chains, orders and orphans per account

Complete documentation is available at https://github.com/rustyeddy/tradechain`,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgPath string
	cfg     *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFromFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func openStore() (*journal.SQLiteStore, error) {
	store, err := journal.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return store, nil
}
