package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/fundwatch/pkg/config"
	"github.com/wonny/fundwatch/pkg/httputil"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance calls happen only through this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiBaseURL string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		apiBaseURL: cfg.APIBaseURL,
	}
}

// fetchHTML fetches an HTML page from finance.yahoo.com
func (c *Client) fetchHTML(ctx context.Context, path string) (string, error) {
	return c.httpClient.GetBody(ctx, fmt.Sprintf("%s%s", c.baseURL, path))
}

// fetchChart fetches the chart JSON for a ticker from the query API
func (c *Client) fetchChart(ctx context.Context, ticker string, params url.Values, v interface{}) error {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s", c.apiBaseURL, url.PathEscape(ticker))
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}
	if err := c.httpClient.GetJSON(ctx, fullURL, v); err != nil {
		return fmt.Errorf("yahoo chart request failed: %w", err)
	}
	return nil
}
