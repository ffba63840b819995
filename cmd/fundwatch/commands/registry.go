package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// registryCmd represents the registry command
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the ticker registry",
	Long: `Inspects and modifies the candidate and rejected ticker sets.

Example:
  go run ./cmd/fundwatch registry list
  go run ./cmd/fundwatch registry add AAPL MSFT NVDA
  go run ./cmd/fundwatch registry rejected
  go run ./cmd/fundwatch registry clear-rejected`,
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate tickers",
	RunE:  listCandidates,
}

var registryAddCmd = &cobra.Command{
	Use:   "add [tickers...]",
	Short: "Add candidate tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  addCandidates,
}

var registryRejectedCmd = &cobra.Command{
	Use:   "rejected",
	Short: "List rejected tickers",
	RunE:  listRejected,
}

var registryClearRejectedCmd = &cobra.Command{
	Use:   "clear-rejected",
	Short: "Move all rejected tickers back to candidates",
	RunE:  clearRejected,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryAddCmd)
	registryCmd.AddCommand(registryRejectedCmd)
	registryCmd.AddCommand(registryClearRejectedCmd)
}

func listCandidates(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers, err := a.Registry.ListCandidates(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Candidates (%d):\n", len(tickers))
	printTickerColumns(tickers)
	return nil
}

func addCandidates(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Accept both space- and comma-separated lists
	var tickers []string
	for _, arg := range args {
		for _, t := range strings.Split(arg, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
	}

	if err := a.Registry.AddCandidates(ctx, tickers); err != nil {
		return err
	}

	fmt.Printf("✅ Added %d candidates\n", len(tickers))
	return nil
}

func listRejected(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers, err := a.Registry.ListRejected(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Rejected (%d):\n", len(tickers))
	printTickerColumns(tickers)
	return nil
}

func clearRejected(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Registry.ClearRejected(ctx); err != nil {
		return err
	}

	fmt.Println("✅ Rejected tickers restored to candidates")
	return nil
}

// printTickerColumns prints tickers eight per line
func printTickerColumns(tickers []string) {
	for i, t := range tickers {
		fmt.Printf("  %-8s", t)
		if (i+1)%8 == 0 {
			fmt.Println()
		}
	}
	if len(tickers)%8 != 0 {
		fmt.Println()
	}
}
