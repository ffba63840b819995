package holdings

import (
	"testing"

	"github.com/wonny/fundwatch/internal/contracts"
)

func floatPtr(v float64) *float64 { return &v }

func TestParser_Parse(t *testing.T) {
	parser := NewParser(false)

	records := []contracts.HoldingRecord{
		{OwnerName: "BLACKROCK INC.", MarketValueRaw: "$4,000,000"},
		{OwnerName: "Vanguard Group Inc", MarketValueRaw: "$6,500,000"},
		{OwnerName: "Some Other Fund LLC", MarketValueRaw: "$99,000,000"},
	}

	got := parser.Parse(records, floatPtr(100)) // $100M cap

	br := got[contracts.InstitutionBlackRock]
	if br.MarketValueMillions != 4 {
		t.Errorf("BlackRock value = %v, want 4", br.MarketValueMillions)
	}
	if br.OwnershipPct != 4 {
		t.Errorf("BlackRock pct = %v, want 4", br.OwnershipPct)
	}

	vg := got[contracts.InstitutionVanguard]
	if vg.MarketValueMillions != 6.5 {
		t.Errorf("Vanguard value = %v, want 6.5", vg.MarketValueMillions)
	}
	if vg.OwnershipPct != 6.5 {
		t.Errorf("Vanguard pct = %v, want 6.5", vg.OwnershipPct)
	}

	if _, ok := got[contracts.InstitutionStateStreet]; ok {
		t.Error("State Street should not be tracked by default")
	}
}

func TestParser_Parse_DuplicateRowsKeepMax(t *testing.T) {
	parser := NewParser(false)

	// Duplicate and partial rows for the same fund must not be summed.
	records := []contracts.HoldingRecord{
		{OwnerName: "BlackRock Fund Advisors", MarketValueRaw: "$3,000,000"},
		{OwnerName: "BLACKROCK INC.", MarketValueRaw: "$5,000,000"},
		{OwnerName: "BlackRock Advisors LLC", MarketValueRaw: "$1,200,000"},
	}

	got := parser.Parse(records, floatPtr(100))

	br := got[contracts.InstitutionBlackRock]
	if br.MarketValueMillions != 5 {
		t.Errorf("BlackRock value = %v, want max 5, not sum", br.MarketValueMillions)
	}
	if br.OwnershipPct != 5 {
		t.Errorf("BlackRock pct = %v, want 5", br.OwnershipPct)
	}
}

func TestParser_Parse_OwnerNameVariants(t *testing.T) {
	parser := NewParser(true)

	tests := []struct {
		owner string
		want  contracts.Institution
	}{
		{"BLACKROCK INC.", contracts.InstitutionBlackRock},
		{"Black Rock Institutional Trust", contracts.InstitutionBlackRock},
		{"THE VANGUARD GROUP", contracts.InstitutionVanguard},
		{"State Street Corp", contracts.InstitutionStateStreet},
	}

	for _, tt := range tests {
		got := parser.Parse([]contracts.HoldingRecord{
			{OwnerName: tt.owner, MarketValueRaw: "$1,000,000"},
		}, floatPtr(10))

		if got[tt.want].MarketValueMillions != 1 {
			t.Errorf("owner %q: expected match on %s", tt.owner, tt.want)
		}
	}
}

func TestParser_Parse_MissingMarketCap(t *testing.T) {
	parser := NewParser(false)

	records := []contracts.HoldingRecord{
		{OwnerName: "Vanguard Group", MarketValueRaw: "$2,000,000"},
	}

	for name, cap := range map[string]*float64{"nil": nil, "zero": floatPtr(0)} {
		t.Run(name, func(t *testing.T) {
			got := parser.Parse(records, cap)

			vg := got[contracts.InstitutionVanguard]
			if vg.OwnershipPct != 0 {
				t.Errorf("pct = %v, want 0 with absent market cap", vg.OwnershipPct)
			}
			// Values are still recorded so downstream can tolerate
			// zero percentages without discarding the ticker.
			if vg.MarketValueMillions != 2 {
				t.Errorf("value = %v, want 2", vg.MarketValueMillions)
			}
		})
	}
}

func TestParseMarketValueMillions(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$1,500,000", 1.5},
		{"2500000", 2.5},
		{"  $750,000 ", 0.75},
		{"", 0},
		{"-", 0},
		{"--", 0},
		{"N/A", 0},
		{"garbage", 0},
		{"-100", 0},
	}

	for _, tt := range tests {
		if got := parseMarketValueMillions(tt.raw); got != tt.want {
			t.Errorf("parseMarketValueMillions(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
