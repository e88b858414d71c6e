package main

import (
	"os"

	"github.com/rustyeddy/tradechain/cmd/tradechain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
