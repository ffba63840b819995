package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/internal/scan"
	"github.com/wonny/fundwatch/pkg/logger"
)

// FullScanJob runs the full candidate scan on a schedule
// ⭐ SSOT: scheduled full scans run only through this job
type FullScanJob struct {
	service *scan.Service
	logger  *logger.Logger
}

// NewFullScanJob creates the full scan job
func NewFullScanJob(service *scan.Service, log *logger.Logger) *FullScanJob {
	return &FullScanJob{service: service, logger: log}
}

// Name returns the job name
func (j *FullScanJob) Name() string {
	return "full_scan"
}

// Schedule runs after the US market close (4 PM ET is 21:00 UTC; the
// extra half hour lets upstream data settle)
func (j *FullScanJob) Schedule() string {
	return "0 30 21 * * 1-5"
}

// Run executes the full scan
func (j *FullScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled full scan")

	result, err := j.service.RunFullScan(ctx)
	if err != nil {
		return fmt.Errorf("full scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"processed":  result.Summary.TotalProcessed,
		"qualifying": result.Summary.QualifyingCount,
		"failed":     result.Summary.FailureCount,
	}).Info("Scheduled full scan completed")

	return nil
}

// QualifyingRecheckJob rescans only the tickers currently holding a
// positive signal level, keeping the result set fresh between full scans
type QualifyingRecheckJob struct {
	service *scan.Service
	store   contracts.ResultStore
	logger  *logger.Logger
}

// NewQualifyingRecheckJob creates the recheck job
func NewQualifyingRecheckJob(service *scan.Service, store contracts.ResultStore, log *logger.Logger) *QualifyingRecheckJob {
	return &QualifyingRecheckJob{service: service, store: store, logger: log}
}

// Name returns the job name
func (j *QualifyingRecheckJob) Name() string {
	return "qualifying_recheck"
}

// Schedule runs mid-session, hourly during US market hours
func (j *QualifyingRecheckJob) Schedule() string {
	return "0 0 14-20 * * 1-5"
}

// Run rescans the qualifying tickers from the latest result set
func (j *QualifyingRecheckJob) Run(ctx context.Context) error {
	current, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load current result set: %w", err)
	}

	tickers := current.Tickers()
	if len(tickers) == 0 {
		j.logger.Info("No qualifying tickers to recheck")
		return nil
	}

	j.logger.WithField("count", len(tickers)).Info("Starting qualifying recheck")

	result, err := j.service.RunIncrementalScan(ctx, tickers)
	if err != nil {
		return fmt.Errorf("incremental scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"qualifying": result.Summary.QualifyingCount,
		"failed":     result.Summary.FailureCount,
	}).Info("Qualifying recheck completed")

	return nil
}
