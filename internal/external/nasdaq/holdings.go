package nasdaq

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/fundwatch/internal/contracts"
)

// holdingsLimit caps the number of institutional rows requested. The
// largest holders come first when sorted by market value, so 50 rows is
// more than enough to find the index funds.
const holdingsLimit = 50

// holdingsResponse is the Nasdaq institutional-holdings API envelope
type holdingsResponse struct {
	Data *struct {
		HoldingsTransactions *struct {
			Table *struct {
				Rows []holdingsRow `json:"rows"`
			} `json:"table"`
		} `json:"holdingsTransactions"`
	} `json:"data"`
	Status struct {
		RCode int `json:"rCode"`
	} `json:"status"`
}

type holdingsRow struct {
	OwnerName   string `json:"ownerName"`
	Date        string `json:"date"`
	SharesHeld  string `json:"sharesHeld"`
	MarketValue string `json:"marketValue"`
}

// FetchHoldings fetches raw institutional-holdings rows for a ticker.
// Returns contracts.ErrUnavailable when Nasdaq has no holdings table for
// the ticker; that is a per-ticker condition, not a transport failure.
func (c *Client) FetchHoldings(ctx context.Context, ticker string) ([]contracts.HoldingRecord, error) {
	ticker = contracts.NormalizeTicker(ticker)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(holdingsLimit))
	params.Set("type", "TOTAL")
	params.Set("sortColumn", "marketValue")

	var resp holdingsResponse
	path := fmt.Sprintf("/api/company/%s/institutional-holdings", url.PathEscape(ticker))
	if err := c.fetchJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.Status.RCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"r_code": resp.Status.RCode,
		}).Debug("Nasdaq returned non-OK rCode")
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrUnavailable)
	}

	// Tickers without institutional coverage come back with an empty data
	// block rather than an error status.
	if resp.Data == nil || resp.Data.HoldingsTransactions == nil || resp.Data.HoldingsTransactions.Table == nil {
		return nil, fmt.Errorf("%s: no holdings table: %w", ticker, contracts.ErrUnavailable)
	}

	rows := resp.Data.HoldingsTransactions.Table.Rows
	records := make([]contracts.HoldingRecord, 0, len(rows))
	for _, row := range rows {
		if row.OwnerName == "" {
			continue
		}
		records = append(records, contracts.HoldingRecord{
			OwnerName:      row.OwnerName,
			MarketValueRaw: row.MarketValue,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"rows":   len(records),
	}).Debug("Fetched institutional holdings")

	return records, nil
}

var _ contracts.HoldingsAdapter = (*Client)(nil)
