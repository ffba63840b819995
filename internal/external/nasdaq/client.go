package nasdaq

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/fundwatch/pkg/config"
	"github.com/wonny/fundwatch/pkg/httputil"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Client handles communication with the Nasdaq company API
// ⭐ SSOT: Nasdaq API calls happen only through this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Nasdaq API client
func NewClient(httpClient *httputil.Client, cfg config.NasdaqConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
	}
}

// fetchJSON fetches a Nasdaq API endpoint and decodes the envelope into v
func (c *Client) fetchJSON(ctx context.Context, path string, params url.Values, v interface{}) error {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	if err := c.httpClient.GetJSON(ctx, fullURL, v); err != nil {
		return fmt.Errorf("nasdaq request failed: %w", err)
	}
	return nil
}
