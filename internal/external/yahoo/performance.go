package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/fundwatch/internal/contracts"
)

// Trading-day offsets for trailing performance windows.
const (
	weekTradingDays  = 5
	monthTradingDays = 21
)

// FetchPerformance computes trailing week, month and year returns from a
// year of daily closes. Windows the history cannot cover stay nil.
func (c *Client) FetchPerformance(ctx context.Context, ticker string) (*contracts.Performance, error) {
	ticker = contracts.NormalizeTicker(ticker)

	params := url.Values{}
	params.Set("range", "1y")
	params.Set("interval", "1d")

	var resp chartResponse
	if err := c.fetchChart(ctx, ticker, params, &resp); err != nil {
		return nil, err
	}

	result, err := resp.firstResult(ticker)
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: no quote series: %w", ticker, contracts.ErrUnavailable)
	}

	closes := compactCloses(result.Indicators.Quote[0].Close)
	perf := computePerformance(closes)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"days":   len(closes),
	}).Debug("Fetched performance history")

	return perf, nil
}

// compactCloses drops nil entries (holidays, halts) keeping order
func compactCloses(raw []*float64) []float64 {
	closes := make([]float64, 0, len(raw))
	for _, c := range raw {
		if c != nil && *c > 0 {
			closes = append(closes, *c)
		}
	}
	return closes
}

// computePerformance derives trailing returns from an ascending series of
// daily closes. The last element is the most recent close.
func computePerformance(closes []float64) *contracts.Performance {
	perf := &contracts.Performance{}
	if len(closes) < 2 {
		return perf
	}

	latest := closes[len(closes)-1]

	if pct, ok := trailingReturn(closes, latest, weekTradingDays); ok {
		perf.Week = &pct
	}
	if pct, ok := trailingReturn(closes, latest, monthTradingDays); ok {
		perf.Month = &pct
	}
	// Year return uses the oldest close in the 1y window
	if base := closes[0]; base > 0 && len(closes) > monthTradingDays {
		pct := contracts.Round2((latest - base) / base * 100)
		perf.Year = &pct
	}

	return perf
}

func trailingReturn(closes []float64, latest float64, days int) (float64, bool) {
	idx := len(closes) - 1 - days
	if idx < 0 {
		return 0, false
	}
	base := closes[idx]
	if base <= 0 {
		return 0, false
	}
	return contracts.Round2((latest - base) / base * 100), true
}
