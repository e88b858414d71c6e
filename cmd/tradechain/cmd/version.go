package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradechain CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradechain version %s\n", version)
		fmt.Println("Rebuilds order chains and P&L from broker transaction logs")
		fmt.Println("https://github.com/rustyeddy/tradechain")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
