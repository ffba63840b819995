package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundwatch/internal/api"
	"github.com/wonny/fundwatch/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health                    - Health check
  GET    /api/results               - Latest result set
  GET    /api/status                - Scan state and progress
  POST   /api/scan                  - Trigger a full scan
  POST   /api/scan/incremental      - Trigger an incremental scan
  GET    /api/registry/candidates   - Candidate ticker list
  POST   /api/registry/candidates   - Add candidate tickers
  GET    /api/registry/rejected     - Rejected ticker list
  DELETE /api/registry/rejected     - Restore rejected tickers
  GET    /ws/progress               - Live scan progress (websocket)

Example:
  go run ./cmd/fundwatch api
  go run ./cmd/fundwatch api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.Config.Port = apiPort
	}

	log := a.Logger

	scanHandler := handlers.NewScanHandler(a.Service, a.Store, log)
	registryHandler := handlers.NewRegistryHandler(a.Registry, log)
	wsHub := api.NewProgressHub(a.Progress, log)

	router := api.NewRouter(scanHandler, registryHandler, wsHub, log)
	server := api.New(a.Config, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.Config.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
