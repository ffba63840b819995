package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundwatch",
	Short: "fundwatch - institutional holdings scanner",
	Long: `fundwatch scans US tickers for BlackRock and Vanguard ownership,
classifies each one into a signal level and keeps a persistent result
set that the API and the dashboard read from.

Usage:
  go run ./cmd/fundwatch [command]

Examples:
  go run ./cmd/fundwatch scan
  go run ./cmd/fundwatch scan incremental AAPL MSFT
  go run ./cmd/fundwatch api
  go run ./cmd/fundwatch scheduler start
  go run ./cmd/fundwatch registry list`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
