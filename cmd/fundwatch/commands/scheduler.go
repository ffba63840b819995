package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundwatch/internal/scheduler"
	"github.com/wonny/fundwatch/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scan scheduler",
	Long: `Starts the scheduler daemon or triggers registered jobs.

Registered jobs:
  full_scan          - weekdays 21:30 UTC (after US market close)
  qualifying_recheck - hourly during US market hours

Example:
  go run ./cmd/fundwatch scheduler start
  go run ./cmd/fundwatch scheduler run full_scan`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runScheduler,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run a job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler wires the scheduler with all jobs registered
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.Logger)

	if err := sched.AddJob(jobs.NewFullScanJob(a.Service, a.Logger)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewQualifyingRecheckJob(a.Service, a.Store, a.Logger)); err != nil {
		return nil, err
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	sched.Start()
	fmt.Println("✅ Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	fmt.Printf("Job %s triggered, waiting for completion (Ctrl+C to detach)\n", jobName)

	// RunJob is async; poll until the job records a result
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	poll := time.NewTicker(time.Second)
	defer poll.Stop()

	for {
		select {
		case <-quit:
			return nil
		case <-poll.C:
			stats := sched.Stats()
			if st, ok := stats[jobName]; ok && st.TotalRuns > 0 {
				if st.LastError != "" {
					return fmt.Errorf("job %s failed: %s", jobName, st.LastError)
				}
				fmt.Printf("✅ Job %s completed\n", jobName)
				return nil
			}
		}
	}
}
