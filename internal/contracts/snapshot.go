package contracts

import (
	"math"
	"strings"
	"time"
)

// Institution identifies a tracked institutional holder
type Institution string

const (
	InstitutionBlackRock   Institution = "blackrock"
	InstitutionVanguard    Institution = "vanguard"
	InstitutionStateStreet Institution = "state_street"
)

// Holding represents one institution's position in a ticker
type Holding struct {
	OwnershipPct        float64 `json:"ownership_pct"`
	MarketValueMillions float64 `json:"market_value_millions"`
}

// Performance holds trailing return percentages. Each window is
// independently nullable because upstream frequently omits them.
type Performance struct {
	Week  *float64 `json:"week,omitempty"`
	Month *float64 `json:"month,omitempty"`
	Year  *float64 `json:"year,omitempty"`
}

// Snapshot represents one ticker's enriched state at scan time
// ⭐ SSOT: enricher → merge engine data hand-off
type Snapshot struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	PriceDelta    float64 `json:"price_delta"`

	Holdings map[Institution]Holding `json:"holdings"`

	MarketCapMillions *float64    `json:"market_cap_millions,omitempty"`
	AvgVolume         *int64      `json:"avg_volume,omitempty"`
	Performance       Performance `json:"performance"`

	// SignalLevel is computed by the classifier during enrichment.
	// PreviousSignalLevel, SignalLevelChanged and IsNew are filled in
	// exclusively by the merge engine.
	SignalLevel         int       `json:"signal_level"`
	PreviousSignalLevel *int      `json:"previous_signal_level,omitempty"`
	SignalLevelChanged  bool      `json:"signal_level_changed"`
	IsNew               bool      `json:"is_new"`
	ScanTimestamp       time.Time `json:"scan_timestamp"`
}

// Pct returns the ownership percentage for an institution, zero if absent
func (s *Snapshot) Pct(inst Institution) float64 {
	return s.Holdings[inst].OwnershipPct
}

// Qualifying reports whether this snapshot's signal level qualifies
func (s *Snapshot) Qualifying() bool {
	return s.SignalLevel > 0
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Holdings = make(map[Institution]Holding, len(s.Holdings))
	for k, v := range s.Holdings {
		out.Holdings[k] = v
	}
	if s.MarketCapMillions != nil {
		v := *s.MarketCapMillions
		out.MarketCapMillions = &v
	}
	if s.AvgVolume != nil {
		v := *s.AvgVolume
		out.AvgVolume = &v
	}
	if s.PreviousSignalLevel != nil {
		v := *s.PreviousSignalLevel
		out.PreviousSignalLevel = &v
	}
	out.Performance = s.Performance.clone()
	return &out
}

func (p Performance) clone() Performance {
	out := Performance{}
	if p.Week != nil {
		v := *p.Week
		out.Week = &v
	}
	if p.Month != nil {
		v := *p.Month
		out.Month = &v
	}
	if p.Year != nil {
		v := *p.Year
		out.Year = &v
	}
	return out
}

// NormalizeTicker canonicalizes a ticker symbol (uppercase, trimmed)
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
