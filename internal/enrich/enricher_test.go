package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/internal/holdings"
	"github.com/wonny/fundwatch/pkg/logger"
)

type fakeQuote struct {
	quote *contracts.Quote
	err   error
}

func (f *fakeQuote) FetchQuote(ctx context.Context, ticker string) (*contracts.Quote, error) {
	return f.quote, f.err
}

type fakeHoldings struct {
	records []contracts.HoldingRecord
	err     error
}

func (f *fakeHoldings) FetchHoldings(ctx context.Context, ticker string) ([]contracts.HoldingRecord, error) {
	return f.records, f.err
}

type fakeMarketInfo struct {
	info *contracts.MarketInfo
	err  error
}

func (f *fakeMarketInfo) FetchMarketInfo(ctx context.Context, ticker string) (*contracts.MarketInfo, error) {
	return f.info, f.err
}

type fakePerformance struct {
	perf *contracts.Performance
	err  error
}

func (f *fakePerformance) FetchPerformance(ctx context.Context, ticker string) (*contracts.Performance, error) {
	return f.perf, f.err
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

func newTestEnricher(q *fakeQuote, h *fakeHoldings, m *fakeMarketInfo, p *fakePerformance) *Enricher {
	return New(q, h, m, p, holdings.NewParser(false), logger.Nop())
}

func TestEnricher_Enrich(t *testing.T) {
	enricher := newTestEnricher(
		&fakeQuote{quote: &contracts.Quote{Price: 1.234, PreviousClose: 1.1}},
		&fakeHoldings{records: []contracts.HoldingRecord{
			{OwnerName: "BLACKROCK INC.", MarketValueRaw: "$4,500,000"},
			{OwnerName: "Vanguard Group", MarketValueRaw: "$4,200,000"},
		}},
		&fakeMarketInfo{info: &contracts.MarketInfo{
			MarketCapMillions: floatPtr(100),
			AvgVolume:         int64Ptr(2_500_000),
		}},
		&fakePerformance{perf: &contracts.Performance{Week: floatPtr(3.1)}},
	)

	snap, err := enricher.Enrich(context.Background(), " abcd ")
	require.NoError(t, err)

	assert.Equal(t, "ABCD", snap.Ticker, "ticker is canonicalized")
	assert.Equal(t, 1.23, snap.Price)
	assert.Equal(t, 1.1, snap.PreviousClose)
	assert.Equal(t, 0.13, snap.PriceDelta)
	assert.Equal(t, 4.5, snap.Pct(contracts.InstitutionBlackRock))
	assert.Equal(t, 4.2, snap.Pct(contracts.InstitutionVanguard))
	assert.Equal(t, 3, snap.SignalLevel, "both funds over 4% classifies as fire")

	// Merge-only fields stay unset
	assert.Nil(t, snap.PreviousSignalLevel)
	assert.False(t, snap.SignalLevelChanged)
	assert.False(t, snap.IsNew)
	assert.False(t, snap.ScanTimestamp.IsZero())
}

func TestEnricher_Enrich_NoPriceData(t *testing.T) {
	enricher := newTestEnricher(
		&fakeQuote{err: contracts.ErrUnavailable},
		&fakeHoldings{},
		&fakeMarketInfo{},
		&fakePerformance{},
	)

	_, err := enricher.Enrich(context.Background(), "ABCD")
	require.Error(t, err)

	var enrichErr *contracts.EnrichError
	require.True(t, errors.As(err, &enrichErr))
	assert.Equal(t, contracts.FailNoPriceData, enrichErr.Reason)
	assert.Equal(t, "ABCD", enrichErr.Ticker)
	assert.ErrorIs(t, err, contracts.ErrUnavailable)
}

func TestEnricher_Enrich_NoHoldingsData(t *testing.T) {
	enricher := newTestEnricher(
		&fakeQuote{quote: &contracts.Quote{Price: 0.9, PreviousClose: 0.85}},
		&fakeHoldings{err: contracts.ErrUnavailable},
		&fakeMarketInfo{},
		&fakePerformance{},
	)

	_, err := enricher.Enrich(context.Background(), "ABCD")
	require.Error(t, err)

	var enrichErr *contracts.EnrichError
	require.True(t, errors.As(err, &enrichErr))
	assert.Equal(t, contracts.FailNoHoldingsData, enrichErr.Reason)
}

func TestEnricher_Enrich_OptionalSourcesDowngrade(t *testing.T) {
	enricher := newTestEnricher(
		&fakeQuote{quote: &contracts.Quote{Price: 1.5, PreviousClose: 1.5}},
		&fakeHoldings{records: []contracts.HoldingRecord{
			{OwnerName: "Vanguard Group", MarketValueRaw: "$2,000,000"},
		}},
		&fakeMarketInfo{err: contracts.ErrUnavailable},
		&fakePerformance{err: contracts.ErrUnavailable},
	)

	snap, err := enricher.Enrich(context.Background(), "ABCD")
	require.NoError(t, err, "market info and performance unavailability must not abort")

	assert.Nil(t, snap.MarketCapMillions)
	assert.Nil(t, snap.AvgVolume)
	assert.Nil(t, snap.Performance.Week)

	// Without market cap, percentages are zero but the value survives
	// and classification tolerates the zero percentages.
	assert.Equal(t, 0.0, snap.Pct(contracts.InstitutionVanguard))
	assert.Equal(t, 2.0, snap.Holdings[contracts.InstitutionVanguard].MarketValueMillions)
	assert.Equal(t, -1, snap.SignalLevel)
}
