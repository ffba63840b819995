package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/fundwatch/internal/contracts"
)

// chartResponse is the v8 chart API envelope, reduced to the fields we read
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		PreviousClose      float64 `json:"previousClose"`
	} `json:"meta"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchQuote fetches the current price and previous close for a ticker.
// Returns contracts.ErrUnavailable when Yahoo does not know the symbol.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*contracts.Quote, error) {
	ticker = contracts.NormalizeTicker(ticker)

	params := url.Values{}
	params.Set("range", "2d")
	params.Set("interval", "1d")

	var resp chartResponse
	if err := c.fetchChart(ctx, ticker, params, &resp); err != nil {
		return nil, err
	}

	result, err := resp.firstResult(ticker)
	if err != nil {
		return nil, err
	}

	price := result.Meta.RegularMarketPrice
	if price <= 0 {
		return nil, fmt.Errorf("%s: no market price: %w", ticker, contracts.ErrUnavailable)
	}

	prevClose := result.Meta.PreviousClose
	if prevClose == 0 {
		prevClose = result.Meta.ChartPreviousClose
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"price":          price,
		"previous_close": prevClose,
	}).Debug("Fetched quote")

	return &contracts.Quote{
		Price:         price,
		PreviousClose: prevClose,
	}, nil
}

// firstResult unwraps the chart envelope, mapping API-level errors and
// empty result lists to ErrUnavailable
func (r *chartResponse) firstResult(ticker string) (*chartResult, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s: %w", ticker, r.Chart.Error.Code, contracts.ErrUnavailable)
	}
	if len(r.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: empty chart result: %w", ticker, contracts.ErrUnavailable)
	}
	return &r.Chart.Result[0], nil
}

var _ contracts.QuoteAdapter = (*Client)(nil)
