// Package enrich assembles one ticker's snapshot from the external
// data sources.
package enrich

import (
	"context"
	"time"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/internal/holdings"
	"github.com/wonny/fundwatch/internal/signal"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Enricher orchestrates the four adapter calls for a single ticker and
// classifies the result
// ⭐ SSOT: Snapshot construction happens here only
type Enricher struct {
	quote       contracts.QuoteAdapter
	holdings    contracts.HoldingsAdapter
	marketInfo  contracts.MarketInfoAdapter
	performance contracts.PerformanceAdapter
	parser      *holdings.Parser
	logger      *logger.Logger
	now         func() time.Time
}

// New creates a new Enricher
func New(
	quote contracts.QuoteAdapter,
	holdingsAdapter contracts.HoldingsAdapter,
	marketInfo contracts.MarketInfoAdapter,
	performance contracts.PerformanceAdapter,
	parser *holdings.Parser,
	log *logger.Logger,
) *Enricher {
	return &Enricher{
		quote:       quote,
		holdings:    holdingsAdapter,
		marketInfo:  marketInfo,
		performance: performance,
		parser:      parser,
		logger:      log.Named("enricher"),
		now:         time.Now,
	}
}

// Enrich fetches all sources for one ticker and builds a classified
// snapshot. Calls are strictly sequential to respect upstream rate
// limits. Quote and holdings are mandatory: their unavailability aborts
// this ticker with a tagged failure. Market info and performance
// downgrade gracefully to nil fields.
//
// PreviousSignalLevel, SignalLevelChanged and IsNew are left unset;
// the merge engine fills them in.
func (e *Enricher) Enrich(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	ticker = contracts.NormalizeTicker(ticker)

	quote, err := e.quote.FetchQuote(ctx, ticker)
	if err != nil {
		return nil, &contracts.EnrichError{Ticker: ticker, Reason: contracts.FailNoPriceData, Err: err}
	}

	records, err := e.holdings.FetchHoldings(ctx, ticker)
	if err != nil {
		return nil, &contracts.EnrichError{Ticker: ticker, Reason: contracts.FailNoHoldingsData, Err: err}
	}

	// Optional sources: unavailability leaves the fields nil.
	info := e.fetchMarketInfo(ctx, ticker)
	perf := e.fetchPerformance(ctx, ticker)

	held := e.parser.Parse(records, info.MarketCapMillions)

	snap := &contracts.Snapshot{
		Ticker:            ticker,
		Price:             contracts.Round2(quote.Price),
		PreviousClose:     contracts.Round2(quote.PreviousClose),
		PriceDelta:        contracts.Round2(quote.Price - quote.PreviousClose),
		Holdings:          held,
		MarketCapMillions: info.MarketCapMillions,
		AvgVolume:         info.AvgVolume,
		Performance:       perf,
		ScanTimestamp:     e.now(),
	}
	snap.SignalLevel = signal.Classify(
		snap.Pct(contracts.InstitutionBlackRock),
		snap.Pct(contracts.InstitutionVanguard),
	)

	e.logger.WithFields(map[string]interface{}{
		"ticker":       ticker,
		"price":        snap.Price,
		"signal_level": snap.SignalLevel,
	}).Debug("Ticker enriched")

	return snap, nil
}

func (e *Enricher) fetchMarketInfo(ctx context.Context, ticker string) contracts.MarketInfo {
	info, err := e.marketInfo.FetchMarketInfo(ctx, ticker)
	if err != nil || info == nil {
		if err != nil {
			e.logger.WithError(err).WithField("ticker", ticker).Debug("Market info unavailable")
		}
		return contracts.MarketInfo{}
	}
	return *info
}

func (e *Enricher) fetchPerformance(ctx context.Context, ticker string) contracts.Performance {
	perf, err := e.performance.FetchPerformance(ctx, ticker)
	if err != nil || perf == nil {
		if err != nil {
			e.logger.WithError(err).WithField("ticker", ticker).Debug("Performance unavailable")
		}
		return contracts.Performance{}
	}
	return *perf
}
