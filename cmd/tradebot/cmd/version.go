package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradebot CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradebot version %s\n", version)
		fmt.Println("An order-execution bot driven by an external strategy engine")
		fmt.Println("https://github.com/rustyeddy/tradebot")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
