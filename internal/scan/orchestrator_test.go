package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/logger"
)

// fakeEnricher fails the tickers listed in fail and can block until
// released to simulate a long-running scan.
type fakeEnricher struct {
	mu      sync.Mutex
	fail    map[string]contracts.FailReason
	block   chan struct{}
	level   int
	visited []string
}

func (f *fakeEnricher) Enrich(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.visited = append(f.visited, ticker)
	f.mu.Unlock()

	if reason, ok := f.fail[ticker]; ok {
		return nil, &contracts.EnrichError{Ticker: ticker, Reason: reason}
	}
	return &contracts.Snapshot{
		Ticker:        ticker,
		Price:         1,
		Holdings:      map[contracts.Institution]contracts.Holding{},
		SignalLevel:   f.level,
		ScanTimestamp: time.Now(),
	}, nil
}

func TestOrchestrator_Scan(t *testing.T) {
	enricher := &fakeEnricher{level: 2}
	orch := NewOrchestrator(enricher, 0, logger.Nop())

	var progress []contracts.Progress
	batch, err := orch.Scan(context.Background(), []string{"AAA", "BBB", "CCC"}, func(p contracts.Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, batch.TotalRequested)
	assert.Len(t, batch.Snapshots, 3)
	assert.Zero(t, batch.FailureCount)

	// Snapshots come out in ticker-list order.
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, enricher.visited)

	// Progress fires after every ticker.
	require.Len(t, progress, 3)
	assert.Equal(t, contracts.Progress{Current: 1, Total: 3, Percentage: 33.33}, progress[0])
	assert.Equal(t, contracts.Progress{Current: 3, Total: 3, Percentage: 100}, progress[2])
}

func TestOrchestrator_Scan_PartialFailureTolerance(t *testing.T) {
	enricher := &fakeEnricher{
		level: 1,
		fail: map[string]contracts.FailReason{
			"BBB": contracts.FailNoPriceData,
			"DDD": contracts.FailNoHoldingsData,
		},
	}
	orch := NewOrchestrator(enricher, 0, logger.Nop())

	var progressCalls int
	batch, err := orch.Scan(context.Background(), []string{"AAA", "BBB", "CCC", "DDD", "EEE"}, func(contracts.Progress) {
		progressCalls++
	})
	require.NoError(t, err, "per-ticker failures must not abort the batch")

	assert.Len(t, batch.Snapshots, 3)
	assert.Equal(t, 2, batch.FailureCount)
	assert.Equal(t, 5, batch.TotalRequested)
	assert.Equal(t, 5, progressCalls, "progress fires for failed tickers too")
}

func TestOrchestrator_Scan_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	enricher := &fakeEnricher{level: 1, block: release}
	orch := NewOrchestrator(enricher, 0, logger.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		orch.Scan(context.Background(), []string{"AAA"}, nil)
	}()

	// Wait for the first scan to be in flight.
	require.Eventually(t, orch.Scanning, time.Second, time.Millisecond)

	_, err := orch.Scan(context.Background(), []string{"BBB"}, nil)
	assert.ErrorIs(t, err, contracts.ErrScanInProgress)

	close(release)
	<-done
	assert.False(t, orch.Scanning())

	// Completed scans release the guard for the next run.
	_, err = orch.Scan(context.Background(), []string{"CCC"}, nil)
	assert.NoError(t, err)
}

func TestOrchestrator_Scan_CancellationReturnsPartialBatch(t *testing.T) {
	enricher := &fakeEnricher{level: 1}
	orch := NewOrchestrator(enricher, 50*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(70 * time.Millisecond)
		cancel()
	}()

	batch, err := orch.Scan(ctx, []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"}, nil)
	require.ErrorIs(t, err, context.Canceled)

	// The partial batch is still a valid merge input.
	require.NotNil(t, batch)
	assert.Greater(t, len(batch.Snapshots), 0)
	assert.Less(t, len(batch.Snapshots), 6)
	assert.False(t, orch.Scanning(), "guard released after cancellation")
}

func TestProgressBroker(t *testing.T) {
	broker := NewProgressBroker()

	ch, cancel := broker.Subscribe()
	defer cancel()

	broker.Publish(contracts.Progress{Current: 1, Total: 2, Percentage: 50})

	select {
	case p := <-ch:
		assert.Equal(t, 1, p.Current)
	case <-time.After(time.Second):
		t.Fatal("no progress delivered")
	}

	last, ok := broker.Last()
	require.True(t, ok)
	assert.Equal(t, 50.0, last.Percentage)
}
