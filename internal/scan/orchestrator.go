// Package scan drives ticker enrichment across the candidate list and
// reconciles the outcome with the persisted result set.
package scan

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Enricher produces one classified snapshot per ticker. Satisfied by
// enrich.Enricher.
type Enricher interface {
	Enrich(ctx context.Context, ticker string) (*contracts.Snapshot, error)
}

// ProgressFunc receives progress after every ticker, success or not
type ProgressFunc func(contracts.Progress)

// Orchestrator runs the enricher over a ticker list
// ⭐ SSOT: the scan loop lives here only
type Orchestrator struct {
	enricher Enricher
	logger   *logger.Logger

	// Inter-ticker pacing. One token per configured delay keeps the
	// loop under upstream rate limits; a future bounded worker pool
	// can share the same limiter.
	limiter *rate.Limiter

	// Single-flight guard. 1 while a scan is running.
	scanning atomic.Bool
}

// NewOrchestrator creates an orchestrator with the given inter-request
// delay
func NewOrchestrator(enricher Enricher, requestDelay time.Duration, log *logger.Logger) *Orchestrator {
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Orchestrator{
		enricher: enricher,
		logger:   log.Named("orchestrator"),
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Scanning reports whether a scan is currently in flight
func (o *Orchestrator) Scanning() bool {
	return o.scanning.Load()
}

// Scan enriches every ticker in order, strictly sequentially. Failed
// tickers are logged and dropped; the batch continues. Returns
// ErrScanInProgress if another scan is already running. Cancellation is
// checked between tickers; a partial batch is returned with the
// context error so the caller can still merge it.
func (o *Orchestrator) Scan(ctx context.Context, tickers []string, progress ProgressFunc) (*contracts.Batch, error) {
	if !o.scanning.CompareAndSwap(false, true) {
		return nil, contracts.ErrScanInProgress
	}
	defer o.scanning.Store(false)

	total := len(tickers)
	batch := &contracts.Batch{
		Snapshots:      make([]*contracts.Snapshot, 0, total),
		TotalRequested: total,
	}

	o.logger.WithField("total", total).Info("Scan started")
	startTime := time.Now()

	for i, ticker := range tickers {
		// Pacing doubles as the cancellation point at the top of every
		// iteration.
		if err := o.limiter.Wait(ctx); err != nil {
			o.logger.WithFields(map[string]interface{}{
				"processed": i,
				"total":     total,
			}).Warn("Scan cancelled, returning partial batch")
			return batch, err
		}

		snap, err := o.enricher.Enrich(ctx, ticker)
		if err != nil {
			batch.FailureCount++
			o.logger.WithError(err).WithField("ticker", ticker).Warn("Ticker enrichment failed")
		} else {
			batch.Snapshots = append(batch.Snapshots, snap)
		}

		if progress != nil {
			progress(contracts.Progress{
				Current:    i + 1,
				Total:      total,
				Percentage: percentage(i+1, total),
			})
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"total":    total,
		"enriched": len(batch.Snapshots),
		"failed":   batch.FailureCount,
		"duration": time.Since(startTime),
	}).Info("Scan completed")

	return batch, nil
}

func percentage(current, total int) float64 {
	if total == 0 {
		return 100
	}
	return contracts.Round2(float64(current) / float64(total) * 100)
}
