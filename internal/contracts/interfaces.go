package contracts

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable signals that an upstream source has no data for a
// ticker. It is an expected per-ticker condition, not a transport error.
var ErrUnavailable = errors.New("data unavailable")

// ErrScanInProgress is returned when a scan is requested while another
// scan is already running
var ErrScanInProgress = errors.New("scan already in progress")

// Quote is the price pair returned by the quote source
type Quote struct {
	Price         float64
	PreviousClose float64
}

// HoldingRecord is one raw institutional-holdings row as delivered by
// the upstream source. MarketValueRaw keeps the original currency and
// locale formatting; parsing is the holdings parser's job.
type HoldingRecord struct {
	OwnerName      string
	MarketValueRaw string
}

// MarketInfo holds market capitalization and volume, either of which
// may be missing upstream
type MarketInfo struct {
	MarketCapMillions *float64
	AvgVolume         *int64
}

// QuoteAdapter fetches price data for one ticker
// ⭐ SSOT: quote source interface
type QuoteAdapter interface {
	FetchQuote(ctx context.Context, ticker string) (*Quote, error)
}

// HoldingsAdapter fetches raw institutional-holdings rows for one ticker
// ⭐ SSOT: holdings source interface
type HoldingsAdapter interface {
	FetchHoldings(ctx context.Context, ticker string) ([]HoldingRecord, error)
}

// MarketInfoAdapter fetches market cap and average volume for one ticker
type MarketInfoAdapter interface {
	FetchMarketInfo(ctx context.Context, ticker string) (*MarketInfo, error)
}

// PerformanceAdapter fetches trailing performance for one ticker
type PerformanceAdapter interface {
	FetchPerformance(ctx context.Context, ticker string) (*Performance, error)
}

// ResultStore persists and loads scan result sets
type ResultStore interface {
	Load(ctx context.Context) (*ResultSet, error)
	Save(ctx context.Context, rs *ResultSet) error
}

// TickerRegistry tracks the candidate and rejected ticker sets. The two
// sets are disjoint; a ticker is never in both.
type TickerRegistry interface {
	ListCandidates(ctx context.Context) ([]string, error)
	ListRejected(ctx context.Context) ([]string, error)
	AddCandidates(ctx context.Context, tickers []string) error
	ApplyDeltas(ctx context.Context, deltas RegistryDeltas) error
	ClearRejected(ctx context.Context) error
}

// FailReason tags why enrichment aborted for a ticker
type FailReason string

const (
	FailNoPriceData    FailReason = "no_price_data"
	FailNoHoldingsData FailReason = "no_holdings_data"
)

// EnrichError is a tagged per-ticker enrichment failure. It is
// recoverable: the scan logs it and continues with the next ticker.
type EnrichError struct {
	Ticker string
	Reason FailReason
	Err    error
}

func (e *EnrichError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enrich %s: %s: %v", e.Ticker, e.Reason, e.Err)
	}
	return fmt.Sprintf("enrich %s: %s", e.Ticker, e.Reason)
}

func (e *EnrichError) Unwrap() error {
	return e.Err
}
