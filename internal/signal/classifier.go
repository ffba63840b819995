// Package signal classifies institutional-ownership strength into
// integer signal levels.
package signal

// Signal levels produced by Classify.
const (
	LevelZeroPresence = -1 // no meaningful presence from either fund
	LevelBelow        = 0  // present but below every threshold
	LevelWatch        = 1
	LevelStrong       = 2
	LevelFire         = 3
)

// negligibleFloor is the percentage below which a holding is treated as
// zero. Filings routinely report residual sub-1% positions that carry
// no signal.
const negligibleFloor = 1.0

// Classify maps two ownership percentages to a signal level in [-1, 3].
// Pure and deterministic: no I/O, no side effects.
// ⭐ SSOT: the canonical classification formula lives here only
func Classify(pctA, pctB float64) int {
	a := floored(pctA)
	b := floored(pctB)

	if a == 0 && b == 0 {
		return LevelZeroPresence
	}

	switch {
	case (a >= 4 && b >= 4) || a >= 7 || b >= 7:
		return LevelFire
	case a >= 4 || b >= 4 || (a >= 2 && b >= 2) || a+b >= 6:
		return LevelStrong
	case a >= 2 || b >= 2 || (a >= 1 && b >= 1) || a+b >= 3:
		return LevelWatch
	default:
		return LevelBelow
	}
}

// floored applies the negligible floor
func floored(pct float64) float64 {
	if pct < negligibleFloor {
		return 0
	}
	return pct
}

// ClassifyLegacy is the superseded two-tier formula from earlier scanner
// revisions: level 2 when either fund holds >= 4%, level 1 when either
// holds >= 3% and the other is present at all, else 0.
//
// Deprecated: kept only until stakeholders confirm the canonical
// formula; classification outcomes diverge substantially from Classify.
func ClassifyLegacy(pctA, pctB float64) int {
	switch {
	case pctA >= 4 && pctB >= 4:
		return 2
	case (pctA >= 3 && pctB > 0) || (pctB >= 3 && pctA > 0):
		return 1
	default:
		return 0
	}
}
