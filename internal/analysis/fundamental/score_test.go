package fundamental

import (
	"math"
	"testing"

	"github.com/seenimoa/niftyscan/pkg/models"
)

func snap(roe, de, peg, pe float64) *models.FundamentalSnapshot {
	return &models.FundamentalSnapshot{
		Ticker: "TEST", Price: 100,
		ROE: roe, DebtToEquity: de, PEG: peg, PE: pe,
	}
}

func TestScoreTolerant(t *testing.T) {
	tests := []struct {
		name string
		snap *models.FundamentalSnapshot
		want int
	}{
		{"all pass", snap(0.18, 0.5, 1.5, 25), 4},
		{"roe at boundary fails", snap(0.12, 0.5, 1.5, 25), 3},
		{"roe just above passes", snap(0.1201, 0.5, 1.5, 25), 4},
		{"high debt", snap(0.18, 2.0, 1.5, 25), 3},
		{"debt at boundary fails", snap(0.18, 1.5, 1.5, 25), 3},
		{"negative peg fails", snap(0.18, 0.5, -0.5, 25), 3},
		{"peg at cap fails", snap(0.18, 0.5, 3.0, 25), 3},
		{"absent peg passes", snap(0.18, 0.5, math.NaN(), 25), 4},
		{"pe at cap fails", snap(0.18, 0.5, 1.5, 40), 3},
		{"absent pe fails", snap(0.18, 0.5, 1.5, math.NaN()), 3},
		{"negative pe fails", snap(0.18, 0.5, 1.5, -12), 3},
		{"everything bad", snap(0.02, 5.0, -1, 90), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.snap, Tolerant)
			if got.Score != tt.want {
				t.Errorf("Score = %d (rules %v), want %d", got.Score, got.RulesPassed, tt.want)
			}
		})
	}
}

func TestScoreStrict(t *testing.T) {
	// Passes all four tolerant rules but only two strict ones: ROE 14% is
	// under 15, and the missing PEG fails under strict.
	s := snap(0.14, 0.8, math.NaN(), 25)

	if got := Score(s, Tolerant); got.Score != 4 {
		t.Errorf("tolerant Score = %d, want 4", got.Score)
	}
	if got := Score(s, Strict); got.Score != 2 {
		t.Errorf("strict Score = %d, want 2", got.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := snap(0.18, 0.5, 1.5, 25)
	first := Score(s, Tolerant)
	for i := 0; i < 10; i++ {
		if got := Score(s, Tolerant); got.Score != first.Score || got.Verdict != first.Verdict {
			t.Fatalf("run %d: Score = %+v, want %+v", i, got, first)
		}
	}
}

func TestNormalizeDebtEquity(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{150, 1.5},  // percent-scaled
		{44.2, 0.442},
		{0.8, 0.8},  // already a ratio
		{10, 10},    // boundary stays as-is
		{0, 0},
	}
	for _, tt := range tests {
		if got := NormalizeDebtEquity(tt.raw); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeDebtEquity(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestScoreUsesNormalizedDebt(t *testing.T) {
	// Raw 120 means a ratio of 1.2, which passes the tolerant 1.5 cap.
	s := snap(0.18, 120, 1.5, 25)
	if got := Score(s, Tolerant); got.Score != 4 {
		t.Errorf("Score = %d (rules %v), want 4", got.Score, got.RulesPassed)
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{4, models.VerdictStrongBuy},
		{3, models.VerdictQualityBuy},
		{2, models.VerdictWatchlist},
		{1, models.VerdictAvoid},
		{0, models.VerdictAvoid},
	}
	for _, tt := range tests {
		if got := Verdict(tt.score); got != tt.want {
			t.Errorf("Verdict(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestPresetByName(t *testing.T) {
	if th, err := PresetByName("strict"); err != nil || th.Name != "strict" {
		t.Errorf("PresetByName(strict) = %+v, %v", th, err)
	}
	if th, err := PresetByName(""); err != nil || th.Name != "tolerant" {
		t.Errorf("PresetByName(\"\") = %+v, %v; want tolerant default", th, err)
	}
	if _, err := PresetByName("aggressive"); err == nil {
		t.Error("PresetByName(aggressive) succeeded, want error")
	}
}
