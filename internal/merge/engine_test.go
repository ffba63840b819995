package merge

import (
	"reflect"
	"testing"
	"time"

	"github.com/wonny/fundwatch/internal/contracts"
)

func snap(ticker string, level int, price float64) *contracts.Snapshot {
	return &contracts.Snapshot{
		Ticker: ticker,
		Price:  price,
		Holdings: map[contracts.Institution]contracts.Holding{
			contracts.InstitutionBlackRock: {},
			contracts.InstitutionVanguard:  {},
		},
		SignalLevel:   level,
		ScanTimestamp: time.Now(),
	}
}

func resultSet(snaps ...*contracts.Snapshot) *contracts.ResultSet {
	rs := contracts.NewResultSet()
	for _, s := range snaps {
		rs.Snapshots[s.Ticker] = s
	}
	return rs
}

func TestEngine_MergeFull(t *testing.T) {
	engine := NewEngine(2.0)

	batch := &contracts.Batch{
		Snapshots: []*contracts.Snapshot{
			snap("AAA", 3, 0.8),
			snap("BBB", 1, 1.5),
			snap("XXX", 0, 1.0),
			snap("YYY", -1, 5.0),
		},
		TotalRequested: 4,
	}

	result, deltas := engine.MergeFull(batch, nil)

	if result.Count() != 2 {
		t.Fatalf("result count = %d, want 2", result.Count())
	}
	if _, ok := result.Get("XXX"); ok {
		t.Error("non-qualifying ticker XXX must be absent from the result set")
	}
	if !reflect.DeepEqual(deltas.Reject, []string{"XXX", "YYY"}) {
		t.Errorf("reject deltas = %v, want [XXX YYY]", deltas.Reject)
	}

	// Full replace without a prior set leaves change-tracking unset.
	aaa, _ := result.Get("AAA")
	if aaa.PreviousSignalLevel != nil || aaa.SignalLevelChanged || aaa.IsNew {
		t.Error("merge-owned fields must stay unset without a prior set")
	}

	// Summary is recomputed, never hand-maintained.
	if result.Summary.TotalProcessed != 4 {
		t.Errorf("total processed = %d, want 4", result.Summary.TotalProcessed)
	}
	if result.Summary.QualifyingCount != 2 {
		t.Errorf("qualifying count = %d, want 2", result.Summary.QualifyingCount)
	}
	if result.Summary.LevelCounts[3] != 1 || result.Summary.LevelCounts[1] != 1 {
		t.Errorf("level counts = %v", result.Summary.LevelCounts)
	}
	if result.Summary.UnderPriceThreshold != 2 {
		t.Errorf("under threshold = %d, want 2", result.Summary.UnderPriceThreshold)
	}
}

func TestEngine_MergeFull_CarriesPreviousLevels(t *testing.T) {
	engine := NewEngine(2.0)

	prior := resultSet(snap("AAA", 2, 1.0))
	batch := &contracts.Batch{
		Snapshots:      []*contracts.Snapshot{snap("AAA", 3, 1.1), snap("CCC", 1, 0.5)},
		TotalRequested: 2,
	}

	result, deltas := engine.MergeFull(batch, prior)

	aaa, _ := result.Get("AAA")
	if aaa.PreviousSignalLevel == nil || *aaa.PreviousSignalLevel != 2 {
		t.Errorf("AAA previous level = %v, want 2", aaa.PreviousSignalLevel)
	}
	if !aaa.SignalLevelChanged || aaa.IsNew {
		t.Errorf("AAA changed=%v isNew=%v, want changed=true isNew=false", aaa.SignalLevelChanged, aaa.IsNew)
	}

	ccc, _ := result.Get("CCC")
	if !ccc.IsNew || ccc.PreviousSignalLevel != nil {
		t.Error("CCC should be marked new with no previous level")
	}
	if !reflect.DeepEqual(deltas.Confirm, []string{"CCC"}) {
		t.Errorf("confirm deltas = %v, want [CCC]", deltas.Confirm)
	}
}

func TestEngine_MergeIncremental_PreservesUntouchedEntries(t *testing.T) {
	engine := NewEngine(2.0)

	current := resultSet(snap("AAA", 2, 1.0), snap("BBB", 1, 0.7))
	batch := &contracts.Batch{
		Snapshots:      []*contracts.Snapshot{snap("AAA", 3, 1.2)},
		TotalRequested: 1,
	}

	result, _ := engine.MergeIncremental(current, batch)

	aaa, _ := result.Get("AAA")
	if aaa.SignalLevel != 3 {
		t.Errorf("AAA level = %d, want 3", aaa.SignalLevel)
	}
	if aaa.PreviousSignalLevel == nil || *aaa.PreviousSignalLevel != 2 {
		t.Errorf("AAA previous = %v, want 2", aaa.PreviousSignalLevel)
	}
	if !aaa.SignalLevelChanged {
		t.Error("AAA should report a level change")
	}

	// BBB was not re-scanned this run and must survive unchanged.
	bbb, ok := result.Get("BBB")
	if !ok {
		t.Fatal("BBB missing from merged set")
	}
	if bbb.SignalLevel != 1 || bbb.SignalLevelChanged {
		t.Errorf("BBB level=%d changed=%v, want 1/false", bbb.SignalLevel, bbb.SignalLevelChanged)
	}
}

func TestEngine_MergeIncremental_DropsDemotedEntries(t *testing.T) {
	engine := NewEngine(2.0)

	current := resultSet(snap("AAA", 2, 1.0))
	batch := &contracts.Batch{
		Snapshots:      []*contracts.Snapshot{snap("AAA", 0, 1.0)},
		TotalRequested: 1,
	}

	result, deltas := engine.MergeIncremental(current, batch)

	if _, ok := result.Get("AAA"); ok {
		t.Error("demoted ticker must be dropped from the merged set")
	}
	if !reflect.DeepEqual(deltas.Reject, []string{"AAA"}) {
		t.Errorf("reject deltas = %v, want [AAA]", deltas.Reject)
	}
}

func TestEngine_MergeIncremental_InsertsNewTickers(t *testing.T) {
	engine := NewEngine(2.0)

	batch := &contracts.Batch{
		Snapshots:      []*contracts.Snapshot{snap("CCC", 1, 0.9), snap("DDD", -1, 0.4)},
		TotalRequested: 2,
	}

	result, deltas := engine.MergeIncremental(contracts.NewResultSet(), batch)

	ccc, ok := result.Get("CCC")
	if !ok {
		t.Fatal("CCC missing from merged set")
	}
	if !ccc.IsNew || ccc.PreviousSignalLevel != nil || ccc.SignalLevelChanged {
		t.Errorf("CCC flags = isNew=%v prev=%v changed=%v, want new entry flags",
			ccc.IsNew, ccc.PreviousSignalLevel, ccc.SignalLevelChanged)
	}

	// Non-qualifying new tickers never enter the set and are excluded
	// from future scans.
	if _, ok := result.Get("DDD"); ok {
		t.Error("non-qualifying new ticker must not enter the set")
	}
	if !reflect.DeepEqual(deltas.Reject, []string{"DDD"}) {
		t.Errorf("reject deltas = %v, want [DDD]", deltas.Reject)
	}
	if !reflect.DeepEqual(deltas.Confirm, []string{"CCC"}) {
		t.Errorf("confirm deltas = %v, want [CCC]", deltas.Confirm)
	}
}

func TestEngine_MergeIncremental_EmptyBatchIsNoOp(t *testing.T) {
	engine := NewEngine(2.0)

	current := resultSet(snap("AAA", 2, 1.0), snap("BBB", 1, 0.7))
	batch := &contracts.Batch{Snapshots: []*contracts.Snapshot{snap("AAA", 3, 1.2)}, TotalRequested: 1}

	merged, _ := engine.MergeIncremental(current, batch)
	again, deltas := engine.MergeIncremental(merged, &contracts.Batch{})

	if !deltas.Empty() {
		t.Errorf("empty-batch merge produced deltas: %+v", deltas)
	}
	if again.Count() != merged.Count() {
		t.Fatalf("count changed: %d -> %d", merged.Count(), again.Count())
	}
	for ticker, want := range merged.Snapshots {
		got, ok := again.Snapshots[ticker]
		if !ok {
			t.Fatalf("ticker %s lost by empty-batch merge", ticker)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ticker %s mutated by empty-batch merge:\n got %+v\nwant %+v", ticker, got, want)
		}
	}
}

func TestEngine_MergeIncremental_DoesNotMutateInputs(t *testing.T) {
	engine := NewEngine(2.0)

	current := resultSet(snap("AAA", 2, 1.0))
	batchSnap := snap("AAA", 3, 1.2)
	batch := &contracts.Batch{Snapshots: []*contracts.Snapshot{batchSnap}, TotalRequested: 1}

	engine.MergeIncremental(current, batch)

	if current.Snapshots["AAA"].SignalLevel != 2 {
		t.Error("current result set was mutated")
	}
	if batchSnap.PreviousSignalLevel != nil || batchSnap.IsNew {
		t.Error("batch snapshot was mutated")
	}
}

func TestEngine_MergeFull_DuplicateTickersLastWriteWins(t *testing.T) {
	engine := NewEngine(2.0)

	batch := &contracts.Batch{
		Snapshots:      []*contracts.Snapshot{snap("AAA", 1, 1.0), snap("aaa ", 3, 1.3)},
		TotalRequested: 2,
	}

	result, _ := engine.MergeFull(batch, nil)

	if result.Count() != 1 {
		t.Fatalf("count = %d, want 1 after dedupe", result.Count())
	}
	aaa, _ := result.Get("AAA")
	if aaa.SignalLevel != 3 {
		t.Errorf("level = %d, want last-write 3", aaa.SignalLevel)
	}
}
