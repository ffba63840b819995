package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fundwatch/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full scan over all candidate tickers",
	Long: `Scans every candidate ticker, classifies each into a signal level
and replaces the persisted result set.

The scan is sequential and paced, so a large candidate list takes a
while. Progress is printed as it goes. Ctrl+C stops the scan; the
tickers already processed are merged in and persisted.

Example:
  go run ./cmd/fundwatch scan
  go run ./cmd/fundwatch scan incremental AAPL MSFT NVDA`,
	RunE: runFullScan,
}

var scanIncrementalCmd = &cobra.Command{
	Use:   "incremental [tickers...]",
	Short: "Rescan specific tickers and merge into the current result set",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIncrementalScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanIncrementalCmd)
}

func runFullScan(cmd *cobra.Command, args []string) error {
	return runScan(func(ctx context.Context, a *app) (*contracts.ResultSet, error) {
		return a.Service.RunFullScan(ctx)
	})
}

func runIncrementalScan(cmd *cobra.Command, args []string) error {
	return runScan(func(ctx context.Context, a *app) (*contracts.ResultSet, error) {
		return a.Service.RunIncrementalScan(ctx, args)
	})
}

// runScan wires signal handling and progress printing around one scan
func runScan(scan func(context.Context, *app) (*contracts.ResultSet, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Print progress on the terminal as the scan advances
	updates, cancel := a.Progress.Subscribe()
	defer cancel()
	go func() {
		for p := range updates {
			fmt.Printf("\r  scanning %d/%d (%.1f%%)", p.Current, p.Total, p.Percentage)
		}
	}()

	result, err := scan(ctx, a)
	fmt.Println()
	if err != nil {
		if result != nil {
			// Partial batch was salvaged; report what we kept
			printSummary(result)
		}
		return err
	}

	printSummary(result)
	return nil
}

// printSummary prints the result set summary and qualifying tickers
func printSummary(rs *contracts.ResultSet) {
	fmt.Printf("\nScan summary (%s)\n", rs.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  processed:        %d\n", rs.Summary.TotalProcessed)
	fmt.Printf("  qualifying:       %d\n", rs.Summary.QualifyingCount)
	fmt.Printf("  failed:           %d\n", rs.Summary.FailureCount)
	fmt.Printf("  under threshold:  %d\n", rs.Summary.UnderPriceThreshold)

	levels := make([]int, 0, len(rs.Summary.LevelCounts))
	for level := range rs.Summary.LevelCounts {
		levels = append(levels, level)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	for _, level := range levels {
		fmt.Printf("  level %d: %d tickers\n", level, rs.Summary.LevelCounts[level])
	}

	tickers := rs.Tickers()
	if len(tickers) > 0 {
		fmt.Println("\nQualifying tickers:")
		for _, ticker := range tickers {
			snap := rs.Snapshots[ticker]
			fmt.Printf("  %-6s  level %d  $%.2f  BR %.2f%%  VG %.2f%%\n",
				ticker,
				snap.SignalLevel,
				snap.Price,
				snap.Pct(contracts.InstitutionBlackRock),
				snap.Pct(contracts.InstitutionVanguard),
			)
		}
	}
}
