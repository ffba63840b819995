// Package holdings extracts per-institution ownership from raw
// institutional-holdings rows.
package holdings

import (
	"strconv"
	"strings"

	"github.com/wonny/fundwatch/internal/contracts"
)

// Name fragments that identify each tracked institution. Matching is a
// case-insensitive substring check because upstream reports the same
// fund under many entity names ("BLACKROCK INC", "BlackRock Fund
// Advisors", ...).
var institutionPatterns = map[contracts.Institution][]string{
	contracts.InstitutionBlackRock:   {"BLACKROCK", "BLACK ROCK"},
	contracts.InstitutionVanguard:    {"VANGUARD"},
	contracts.InstitutionStateStreet: {"STATE STREET", "STATE STR"},
}

// Parser resolves raw holding rows into per-institution positions
type Parser struct {
	tracked []contracts.Institution
}

// NewParser creates a parser tracking BlackRock and Vanguard, plus
// State Street when enabled
func NewParser(trackStateStreet bool) *Parser {
	tracked := []contracts.Institution{
		contracts.InstitutionBlackRock,
		contracts.InstitutionVanguard,
	}
	if trackStateStreet {
		tracked = append(tracked, contracts.InstitutionStateStreet)
	}
	return &Parser{tracked: tracked}
}

// Tracked returns the institutions this parser resolves
func (p *Parser) Tracked() []contracts.Institution {
	return p.tracked
}

// Parse resolves raw rows into per-institution holdings. For each
// tracked institution it keeps the maximum single matching market value
// (duplicate and partial rows appear upstream; summing them would
// double count). marketCapMillions may be nil or zero, in which case
// percentages are zero but market values are still recorded.
func (p *Parser) Parse(records []contracts.HoldingRecord, marketCapMillions *float64) map[contracts.Institution]contracts.Holding {
	out := make(map[contracts.Institution]contracts.Holding, len(p.tracked))
	for _, inst := range p.tracked {
		out[inst] = contracts.Holding{}
	}

	for _, rec := range records {
		inst, ok := p.matchInstitution(rec.OwnerName)
		if !ok {
			continue
		}

		valueMillions := parseMarketValueMillions(rec.MarketValueRaw)
		if valueMillions > out[inst].MarketValueMillions {
			out[inst] = contracts.Holding{MarketValueMillions: valueMillions}
		}
	}

	if marketCapMillions == nil || *marketCapMillions <= 0 {
		return out
	}

	for inst, holding := range out {
		holding.OwnershipPct = contracts.Round2(holding.MarketValueMillions / *marketCapMillions * 100)
		out[inst] = holding
	}

	return out
}

// matchInstitution maps an owner name to a tracked institution
func (p *Parser) matchInstitution(ownerName string) (contracts.Institution, bool) {
	name := strings.ToUpper(ownerName)
	for _, inst := range p.tracked {
		for _, pattern := range institutionPatterns[inst] {
			if strings.Contains(name, pattern) {
				return inst, true
			}
		}
	}
	return "", false
}

// parseMarketValueMillions parses a currency-formatted market value
// (dollars) into millions. Malformed input parses to 0, not an error.
func parseMarketValueMillions(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" || s == "-" || s == "--" {
		return 0
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0
	}

	return value / 1_000_000
}
