package signal

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		pctA float64
		pctB float64
		want int
	}{
		{"both zero", 0, 0, -1},
		{"both under floor", 0.5, 0.5, -1},
		{"just under floor", 0.99, 0.99, -1},
		{"single seven", 7, 0, 3},
		{"single seven reversed", 0, 7, 3},
		{"both four", 4, 4, 3},
		{"one four only", 4, 0, 2},
		{"both two", 2, 2, 2},
		{"sum six", 5, 1, 2},
		{"one two only", 2, 0, 1},
		{"both one", 1, 1, 1},
		{"sum three", 1.5, 1.5, 1},
		{"present below thresholds", 1.2, 0, 0},
		{"floor drops one side", 3.5, 0.9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.pctA, tt.pctB); got != tt.want {
				t.Errorf("Classify(%v, %v) = %d, want %d", tt.pctA, tt.pctB, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := [][2]float64{{0, 0}, {0.5, 3.2}, {4, 4}, {7.1, 0.2}, {2.5, 2.5}}
	for _, in := range inputs {
		first := Classify(in[0], in[1])
		for i := 0; i < 10; i++ {
			if got := Classify(in[0], in[1]); got != first {
				t.Fatalf("Classify(%v, %v) not deterministic: %d then %d", in[0], in[1], first, got)
			}
		}
	}
}

func TestClassify_Range(t *testing.T) {
	for a := 0.0; a <= 12; a += 0.5 {
		for b := 0.0; b <= 12; b += 0.5 {
			got := Classify(a, b)
			if got < -1 || got > 3 {
				t.Fatalf("Classify(%v, %v) = %d, out of [-1, 3]", a, b, got)
			}
		}
	}
}

func TestClassifyLegacy(t *testing.T) {
	tests := []struct {
		name string
		pctA float64
		pctB float64
		want int
	}{
		{"both four plus", 4.5, 4.0, 2},
		{"one three with other present", 3.2, 0.1, 1},
		{"one three other absent", 3.2, 0, 0},
		{"below everything", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLegacy(tt.pctA, tt.pctB); got != tt.want {
				t.Errorf("ClassifyLegacy(%v, %v) = %d, want %d", tt.pctA, tt.pctB, got, tt.want)
			}
		})
	}
}

// The two formulas are materially different business rules, not
// refactors of each other. Pin a case where they disagree so the
// divergence stays visible.
func TestClassify_DivergesFromLegacy(t *testing.T) {
	if Classify(2, 2) == ClassifyLegacy(2, 2) {
		t.Error("expected canonical and legacy formulas to diverge at (2, 2)")
	}
}
