package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradebot",
	Short: "An order-execution bot driven by an external strategy engine",
	Long: `Tradebot trades one instrument against the Alpaca paper API on a fixed
cadence. Each cycle it snapshots the account, informs a strategy engine
child process over a line protocol, executes the engine's BUY/SELL
decision as a GTC limit order, resolves partial fills under a deadline,
and reconciles its local view of cash/position/equity without waiting on
the broker's bookkeeping.

It provides tools for:
  - Running the trading loop against a strategy engine binary
  - Journaling executed trades to CSV or SQLite
  - Querying the trade journal
  - Generating and validating configuration files`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
