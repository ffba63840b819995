package contracts

import (
	"sort"
	"time"
)

// Summary holds derived aggregate counts for a result set. It is always
// recomputed from the snapshots, never hand-maintained.
type Summary struct {
	TotalProcessed      int         `json:"total_processed"`
	QualifyingCount     int         `json:"qualifying_count"`
	LevelCounts         map[int]int `json:"level_counts"`
	UnderPriceThreshold int         `json:"under_price_threshold"`
	// FailureCount is the number of tickers whose enrichment failed in
	// the scan that produced this set.
	FailureCount int `json:"failure_count"`
}

// ResultSet is the persisted outcome of one scan
// ⭐ SSOT: merge engine → store data hand-off
type ResultSet struct {
	Snapshots map[string]*Snapshot `json:"snapshots"` // key: ticker
	Summary   Summary              `json:"summary"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewResultSet returns an empty result set
func NewResultSet() *ResultSet {
	return &ResultSet{
		Snapshots: make(map[string]*Snapshot),
		Summary:   Summary{LevelCounts: make(map[int]int)},
	}
}

// Get returns the snapshot for a ticker
func (r *ResultSet) Get(ticker string) (*Snapshot, bool) {
	snap, ok := r.Snapshots[NormalizeTicker(ticker)]
	return snap, ok
}

// Count returns the number of snapshots in the set
func (r *ResultSet) Count() int {
	return len(r.Snapshots)
}

// Tickers returns all tickers present in the set, sorted
func (r *ResultSet) Tickers() []string {
	out := make([]string, 0, len(r.Snapshots))
	for ticker := range r.Snapshots {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the result set
func (r *ResultSet) Clone() *ResultSet {
	out := &ResultSet{
		Snapshots: make(map[string]*Snapshot, len(r.Snapshots)),
		Summary: Summary{
			TotalProcessed:      r.Summary.TotalProcessed,
			QualifyingCount:     r.Summary.QualifyingCount,
			LevelCounts:         make(map[int]int, len(r.Summary.LevelCounts)),
			UnderPriceThreshold: r.Summary.UnderPriceThreshold,
			FailureCount:        r.Summary.FailureCount,
		},
		Timestamp: r.Timestamp,
	}
	for ticker, snap := range r.Snapshots {
		out.Snapshots[ticker] = snap.Clone()
	}
	for level, count := range r.Summary.LevelCounts {
		out.Summary.LevelCounts[level] = count
	}
	return out
}

// Batch is the output of one scan run before merging
type Batch struct {
	Snapshots      []*Snapshot `json:"snapshots"`
	TotalRequested int         `json:"total_requested"`
	FailureCount   int         `json:"failure_count"`
}

// RegistryDeltas are the registry instructions produced by a merge.
// Applying them is a separate, explicit step.
type RegistryDeltas struct {
	// Reject lists tickers to move from candidates to rejected.
	Reject []string `json:"reject"`
	// Confirm lists tickers newly qualifying that must stay candidates.
	Confirm []string `json:"confirm"`
}

// Empty reports whether the deltas carry no instructions
func (d RegistryDeltas) Empty() bool {
	return len(d.Reject) == 0 && len(d.Confirm) == 0
}

// Progress reports scan advancement after each ticker
type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
