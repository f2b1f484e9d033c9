// Package fundamental scores snapshots against four quality rules and maps
// the score to a verdict.
package fundamental

import (
	"fmt"
	"math"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// Thresholds parameterizes the four scoring rules. One point per rule
// passed, four maximum; the same snapshot always yields the same score.
type Thresholds struct {
	Name            string
	MinROEPct       float64 // rule 1: ROE above this, in percent
	MaxDebtEquity   float64 // rule 2: normalized debt/equity below this
	MaxPEG          float64 // rule 3: PEG in (0, MaxPEG)
	MaxPE           float64 // rule 4: PE in (0, MaxPE)
	AbsentPEGPasses bool    // rule 3 when the provider reports no PEG
}

// Tolerant is the default preset. A missing PEG passes rule 3 on the view
// that absence of growth data should not sink an otherwise sound stock.
var Tolerant = Thresholds{
	Name:            "tolerant",
	MinROEPct:       12,
	MaxDebtEquity:   1.5,
	MaxPEG:          3.0,
	MaxPE:           40,
	AbsentPEGPasses: true,
}

// Strict tightens every bound and fails rule 3 on a missing PEG.
var Strict = Thresholds{
	Name:            "strict",
	MinROEPct:       15,
	MaxDebtEquity:   1.0,
	MaxPEG:          2.0,
	MaxPE:           30,
	AbsentPEGPasses: false,
}

// PresetByName resolves a preset name to its thresholds.
func PresetByName(name string) (Thresholds, error) {
	switch name {
	case "", Tolerant.Name:
		return Tolerant, nil
	case Strict.Name:
		return Strict, nil
	default:
		return Thresholds{}, fmt.Errorf("unknown scoring preset %q", name)
	}
}

// NormalizeDebtEquity maps provider units to a plain ratio. Yahoo Finance
// reports debt/equity percent-scaled (44.2 means 0.442) while Screener.in
// reports the ratio directly; anything above 10 is assumed percent-scaled.
func NormalizeDebtEquity(raw float64) float64 {
	if raw > 10 {
		return raw / 100
	}
	return raw
}

// Score evaluates the snapshot against the thresholds. The snapshot's raw
// DebtToEquity is normalized internally; pass the normalized value to the
// record constructor separately via NormalizeDebtEquity.
func Score(snap *models.FundamentalSnapshot, th Thresholds) models.ScoreResult {
	var passed []string

	if snap.ROE*100 > th.MinROEPct {
		passed = append(passed, "roe")
	}
	if NormalizeDebtEquity(snap.DebtToEquity) < th.MaxDebtEquity {
		passed = append(passed, "debt")
	}
	if pegPasses(snap.PEG, th) {
		passed = append(passed, "peg")
	}
	if !math.IsNaN(snap.PE) && snap.PE > 0 && snap.PE < th.MaxPE {
		passed = append(passed, "pe")
	}

	score := len(passed)
	return models.ScoreResult{
		Score:       score,
		RulesPassed: passed,
		Verdict:     Verdict(score),
	}
}

func pegPasses(peg float64, th Thresholds) bool {
	if math.IsNaN(peg) {
		return th.AbsentPEGPasses
	}
	return peg > 0 && peg < th.MaxPEG
}

// Verdict maps a score to its label.
func Verdict(score int) string {
	switch score {
	case 4:
		return models.VerdictStrongBuy
	case 3:
		return models.VerdictQualityBuy
	case 2:
		return models.VerdictWatchlist
	default:
		return models.VerdictAvoid
	}
}
