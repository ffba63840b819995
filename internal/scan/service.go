package scan

import (
	"context"
	"fmt"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/internal/merge"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Service exposes the two scan operations. It wires the orchestrator,
// the merge engine, the result store and the ticker registry; the
// orchestrator's single-flight guard covers both operations.
type Service struct {
	orchestrator *Orchestrator
	engine       *merge.Engine
	store        contracts.ResultStore
	registry     contracts.TickerRegistry
	progress     *ProgressBroker
	logger       *logger.Logger
}

// NewService creates a scan service
func NewService(
	orchestrator *Orchestrator,
	engine *merge.Engine,
	store contracts.ResultStore,
	registry contracts.TickerRegistry,
	progress *ProgressBroker,
	log *logger.Logger,
) *Service {
	return &Service{
		orchestrator: orchestrator,
		engine:       engine,
		store:        store,
		registry:     registry,
		progress:     progress,
		logger:       log.Named("scan"),
	}
}

// Progress returns the progress broker for subscribers
func (s *Service) Progress() *ProgressBroker {
	return s.progress
}

// Scanning reports whether a scan is in flight
func (s *Service) Scanning() bool {
	return s.orchestrator.Scanning()
}

// RunFullScan scans every candidate ticker and replaces the persisted
// result set (merge Mode A). The previous set is only consulted to
// carry signal-level history forward.
func (s *Service) RunFullScan(ctx context.Context) (*contracts.ResultSet, error) {
	candidates, err := s.registry.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	batch, err := s.orchestrator.Scan(ctx, candidates, s.progress.Publish)
	if err != nil {
		return s.salvage(ctx, batch, err)
	}

	prior := s.loadPrior(ctx)
	result, deltas := s.engine.MergeFull(batch, prior)

	return s.apply(ctx, result, deltas, batch)
}

// RunIncrementalScan scans a subset of tickers and merges the outcome
// into the persisted result set (merge Mode B). Rejected tickers are
// skipped.
func (s *Service) RunIncrementalScan(ctx context.Context, tickers []string) (*contracts.ResultSet, error) {
	eligible, err := s.filterRejected(ctx, tickers)
	if err != nil {
		return nil, err
	}

	batch, err := s.orchestrator.Scan(ctx, eligible, s.progress.Publish)
	if err != nil {
		return s.salvage(ctx, batch, err)
	}

	current := s.loadPrior(ctx)
	result, deltas := s.engine.MergeIncremental(current, batch)

	return s.apply(ctx, result, deltas, batch)
}

// salvage persists a partial batch after a cancelled scan. The partial
// outcome always merges incrementally: the tickers that were never
// reached must survive even in a full scan. Persistence runs on a
// detached context because the scan context is already dead.
func (s *Service) salvage(ctx context.Context, batch *contracts.Batch, scanErr error) (*contracts.ResultSet, error) {
	if batch == nil || (len(batch.Snapshots) == 0 && batch.FailureCount == 0) {
		return nil, scanErr
	}

	s.logger.WithFields(map[string]interface{}{
		"enriched": len(batch.Snapshots),
		"failed":   batch.FailureCount,
	}).Warn("Scan interrupted, persisting partial batch")

	detached := context.WithoutCancel(ctx)
	current := s.loadPrior(detached)
	result, deltas := s.engine.MergeIncremental(current, batch)

	if _, err := s.apply(detached, result, deltas, batch); err != nil {
		return result, err
	}
	return result, scanErr
}

// apply persists the merged set and applies registry deltas. A failed
// save is surfaced alongside the merged set so the caller can re-save
// without re-scanning.
func (s *Service) apply(ctx context.Context, result *contracts.ResultSet, deltas contracts.RegistryDeltas, batch *contracts.Batch) (*contracts.ResultSet, error) {
	if err := s.store.Save(ctx, result); err != nil {
		return result, fmt.Errorf("save result set: %w", err)
	}

	if !deltas.Empty() {
		if err := s.registry.ApplyDeltas(ctx, deltas); err != nil {
			return result, fmt.Errorf("apply registry deltas: %w", err)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"qualifying": result.Summary.QualifyingCount,
		"rejected":   len(deltas.Reject),
		"new":        len(deltas.Confirm),
		"failed":     batch.FailureCount,
	}).Info("Scan results applied")

	return result, nil
}

// loadPrior loads the previous result set; a load failure degrades to
// an empty prior rather than blocking the scan
func (s *Service) loadPrior(ctx context.Context) *contracts.ResultSet {
	prior, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Could not load previous result set, merging against empty set")
		return contracts.NewResultSet()
	}
	return prior
}

// filterRejected drops tickers present in the rejected set
func (s *Service) filterRejected(ctx context.Context, tickers []string) ([]string, error) {
	rejected, err := s.registry.ListRejected(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rejected: %w", err)
	}

	skip := make(map[string]struct{}, len(rejected))
	for _, t := range rejected {
		skip[contracts.NormalizeTicker(t)] = struct{}{}
	}

	eligible := make([]string, 0, len(tickers))
	for _, t := range tickers {
		normalized := contracts.NormalizeTicker(t)
		if normalized == "" {
			continue
		}
		if _, ok := skip[normalized]; ok {
			s.logger.WithField("ticker", normalized).Debug("Skipping rejected ticker")
			continue
		}
		eligible = append(eligible, normalized)
	}
	return eligible, nil
}
