package yahoo

import (
	"testing"
)

func TestParseMarketInfoHTML(t *testing.T) {
	// Sample summary table from a Yahoo Finance quote page
	sampleHTML := `
		<html>
		<body>
		<table>
			<tr><td>Previous Close</td><td data-test="PREV_CLOSE-value">182.31</td></tr>
			<tr><td>Market Cap</td><td data-test="MARKET_CAP-value">2.45T</td></tr>
			<tr><td>Avg. Volume</td><td data-test="AVERAGE_VOLUME_3MONTH-value">58,123,456</td></tr>
		</table>
		</body>
		</html>
	`

	info, err := parseMarketInfoHTML(sampleHTML)
	if err != nil {
		t.Fatalf("parseMarketInfoHTML() error = %v", err)
	}

	if info.MarketCapMillions == nil {
		t.Fatal("MarketCapMillions is nil, want 2450000")
	}
	if *info.MarketCapMillions != 2_450_000 {
		t.Errorf("MarketCapMillions = %v, want 2450000", *info.MarketCapMillions)
	}

	if info.AvgVolume == nil {
		t.Fatal("AvgVolume is nil, want 58123456")
	}
	if *info.AvgVolume != 58_123_456 {
		t.Errorf("AvgVolume = %d, want 58123456", *info.AvgVolume)
	}
}

func TestParseMarketInfoHTMLMissingFields(t *testing.T) {
	sampleHTML := `
		<html>
		<body>
		<table>
			<tr><td>Market Cap</td><td data-test="MARKET_CAP-value">N/A</td></tr>
		</table>
		</body>
		</html>
	`

	info, err := parseMarketInfoHTML(sampleHTML)
	if err != nil {
		t.Fatalf("parseMarketInfoHTML() error = %v", err)
	}
	if info.MarketCapMillions != nil {
		t.Errorf("MarketCapMillions = %v, want nil", *info.MarketCapMillions)
	}
	if info.AvgVolume != nil {
		t.Errorf("AvgVolume = %v, want nil", *info.AvgVolume)
	}
}

func TestParseAbbreviatedMillions(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"2.45T", 2_450_000, true},
		{"850.3B", 850_300, true},
		{"12.5M", 12.5, true},
		{"900K", 0.9, true},
		{"1,500,000", 1.5, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"-5B", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseAbbreviatedMillions(tt.input)
		if ok != tt.ok {
			t.Errorf("parseAbbreviatedMillions(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseAbbreviatedMillions(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
