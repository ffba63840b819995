package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest result set summary",
	Long: `Loads the latest persisted result set and prints its summary,
level distribution and qualifying tickers.

Example:
  go run ./cmd/fundwatch status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if health, err := a.DB.HealthCheck(ctx); err == nil {
		fmt.Printf("Database: ok (%v, %d/%d conns idle)\n",
			health.ResponseTime, health.IdleConns, health.TotalConns)
	} else {
		fmt.Printf("Database: unhealthy: %v\n", err)
	}

	rs, err := a.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load result set: %w", err)
	}

	if rs.Count() == 0 && rs.Summary.TotalProcessed == 0 {
		fmt.Println("No scan results yet. Run: go run ./cmd/fundwatch scan")
		return nil
	}

	printSummary(rs)
	return nil
}
