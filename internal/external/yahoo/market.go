package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fundwatch/internal/contracts"
)

// FetchMarketInfo scrapes market cap and average volume from the quote
// summary page. Both fields are optional upstream; a value Yahoo renders
// as "N/A" or omits comes back as nil.
func (c *Client) FetchMarketInfo(ctx context.Context, ticker string) (*contracts.MarketInfo, error) {
	ticker = contracts.NormalizeTicker(ticker)

	html, err := c.fetchHTML(ctx, fmt.Sprintf("/quote/%s", url.PathEscape(ticker)))
	if err != nil {
		return nil, err
	}

	info, err := parseMarketInfoHTML(html)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"market_cap": info.MarketCapMillions != nil,
		"avg_volume": info.AvgVolume != nil,
	}).Debug("Fetched market info")

	return info, nil
}

// parseMarketInfoHTML extracts the summary-table fields from a quote page
func parseMarketInfoHTML(html string) (*contracts.MarketInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse quote page: %w", err)
	}

	info := &contracts.MarketInfo{}

	if text := summaryValue(doc, "MARKET_CAP-value"); text != "" {
		if millions, ok := parseAbbreviatedMillions(text); ok {
			info.MarketCapMillions = &millions
		}
	}

	if text := summaryValue(doc, "AVERAGE_VOLUME_3MONTH-value"); text != "" {
		cleaned := strings.ReplaceAll(text, ",", "")
		if vol, err := strconv.ParseInt(cleaned, 10, 64); err == nil && vol > 0 {
			info.AvgVolume = &vol
		}
	}

	return info, nil
}

// summaryValue reads one cell of the quote summary table by its data-test id
func summaryValue(doc *goquery.Document, dataTest string) string {
	text := strings.TrimSpace(doc.Find(fmt.Sprintf(`td[data-test=%q]`, dataTest)).First().Text())
	if text == "N/A" || text == "--" {
		return ""
	}
	return text
}

// parseAbbreviatedMillions converts Yahoo's abbreviated numbers
// ("2.45T", "850.3B", "12.5M", "900K") to millions of dollars
func parseAbbreviatedMillions(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}

	multiplier := 1.0 / 1_000_000 // plain number is dollars
	switch s[len(s)-1] {
	case 'T':
		multiplier = 1_000_000
		s = s[:len(s)-1]
	case 'B':
		multiplier = 1_000
		s = s[:len(s)-1]
	case 'M':
		multiplier = 1
		s = s[:len(s)-1]
	case 'K':
		multiplier = 0.001
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value * multiplier, true
}

var _ contracts.MarketInfoAdapter = (*Client)(nil)
