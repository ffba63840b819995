// Package merge reconciles a freshly scanned batch of snapshots with
// the previously persisted result set.
package merge

import (
	"sort"
	"time"

	"github.com/wonny/fundwatch/internal/contracts"
)

// Engine merges scan batches into result sets. Both merge modes are
// pure: inputs are never mutated, registry deltas are returned for the
// caller to apply as an explicit separate step.
// ⭐ SSOT: promotion/demotion and change-tracking live here only
type Engine struct {
	priceThreshold float64
	now            func() time.Time
}

// NewEngine creates a merge engine. priceThreshold feeds the
// under-threshold summary bucket.
func NewEngine(priceThreshold float64) *Engine {
	return &Engine{
		priceThreshold: priceThreshold,
		now:            time.Now,
	}
}

// MergeFull performs a full-replace merge (Mode A). The batch is
// authoritative for every candidate ticker: only qualifying snapshots
// survive, everything non-qualifying is instructed for rejection.
//
// prior may be nil. When given, previous signal levels are carried
// forward from it so change-tracking works across full scans too.
func (e *Engine) MergeFull(batch *contracts.Batch, prior *contracts.ResultSet) (*contracts.ResultSet, contracts.RegistryDeltas) {
	result := contracts.NewResultSet()
	deltas := contracts.RegistryDeltas{}

	for ticker, snap := range dedupe(batch.Snapshots) {
		if !snap.Qualifying() {
			deltas.Reject = append(deltas.Reject, ticker)
			continue
		}

		kept := snap.Clone()
		kept.Ticker = ticker
		if prior != nil {
			carryForward(kept, prior)
			if kept.IsNew {
				deltas.Confirm = append(deltas.Confirm, kept.Ticker)
			}
		}
		result.Snapshots[kept.Ticker] = kept
	}

	e.finalize(result, batch.TotalRequested, batch.FailureCount)
	sortDeltas(&deltas)
	return result, deltas
}

// MergeIncremental performs an incremental merge (Mode B). The batch
// only has fresh knowledge for a subset of tickers; every entry it does
// not cover is preserved verbatim so previously qualifying tickers are
// not lost. Merging an empty batch is a no-op on content.
func (e *Engine) MergeIncremental(current *contracts.ResultSet, batch *contracts.Batch) (*contracts.ResultSet, contracts.RegistryDeltas) {
	if current == nil {
		current = contracts.NewResultSet()
	}

	result := contracts.NewResultSet()
	deltas := contracts.RegistryDeltas{}
	fresh := dedupe(batch.Snapshots)

	// Existing entries: replace when re-scanned, keep otherwise.
	for ticker, old := range current.Snapshots {
		newSnap, rescanned := fresh[ticker]
		if !rescanned {
			result.Snapshots[ticker] = old.Clone()
			continue
		}

		updated := newSnap.Clone()
		updated.Ticker = ticker
		prev := old.SignalLevel
		updated.PreviousSignalLevel = &prev
		updated.SignalLevelChanged = updated.SignalLevel != prev
		updated.IsNew = false
		result.Snapshots[ticker] = updated
	}

	// Batch entries not previously present: insert when qualifying.
	for ticker, snap := range fresh {
		if _, existed := current.Snapshots[ticker]; existed {
			continue
		}
		if !snap.Qualifying() {
			// Scanned, computed non-qualifying: never enters the set
			// and is excluded from future scans.
			deltas.Reject = append(deltas.Reject, ticker)
			continue
		}

		inserted := snap.Clone()
		inserted.Ticker = ticker
		inserted.IsNew = true
		inserted.PreviousSignalLevel = nil
		inserted.SignalLevelChanged = false
		result.Snapshots[ticker] = inserted
		deltas.Confirm = append(deltas.Confirm, ticker)
	}

	// Drop demoted entries from the merged set.
	for ticker, snap := range result.Snapshots {
		if !snap.Qualifying() {
			delete(result.Snapshots, ticker)
			deltas.Reject = append(deltas.Reject, ticker)
		}
	}

	e.finalize(result, current.Summary.TotalProcessed+batch.TotalRequested, batch.FailureCount)
	sortDeltas(&deltas)
	return result, deltas
}

// finalize recomputes the summary and stamps the result set
func (e *Engine) finalize(rs *contracts.ResultSet, totalProcessed, failureCount int) {
	summary := contracts.Summary{
		TotalProcessed: totalProcessed,
		FailureCount:   failureCount,
		LevelCounts:    make(map[int]int),
	}

	for _, snap := range rs.Snapshots {
		summary.LevelCounts[snap.SignalLevel]++
		if snap.Qualifying() {
			summary.QualifyingCount++
		}
		if snap.Price < e.priceThreshold {
			summary.UnderPriceThreshold++
		}
	}

	rs.Summary = summary
	rs.Timestamp = e.now()
}

// dedupe keys a batch by canonical ticker, last-write-wins
func dedupe(snaps []*contracts.Snapshot) map[string]*contracts.Snapshot {
	out := make(map[string]*contracts.Snapshot, len(snaps))
	for _, snap := range snaps {
		out[contracts.NormalizeTicker(snap.Ticker)] = snap
	}
	return out
}

// carryForward fills merge-owned fields on a full-scan snapshot from
// the prior persisted set
func carryForward(snap *contracts.Snapshot, prior *contracts.ResultSet) {
	old, ok := prior.Snapshots[snap.Ticker]
	if !ok {
		snap.IsNew = true
		snap.PreviousSignalLevel = nil
		snap.SignalLevelChanged = false
		return
	}

	prev := old.SignalLevel
	snap.PreviousSignalLevel = &prev
	snap.SignalLevelChanged = snap.SignalLevel != prev
	snap.IsNew = false
}

// sortDeltas orders delta lists for deterministic output
func sortDeltas(d *contracts.RegistryDeltas) {
	sort.Strings(d.Reject)
	sort.Strings(d.Confirm)
}
