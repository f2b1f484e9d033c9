package technical

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// flatBars builds n identical candles with a constant high-low span and no
// inter-bar gaps, so every true range equals span.
func flatBars(n int, close, span float64) []models.OHLCV {
	bars := make([]models.OHLCV, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.OHLCV{
			Timestamp: ts.AddDate(0, 0, i),
			Open:      close,
			High:      close + span/2,
			Low:       close - span/2,
			Close:     close,
			Volume:    1000,
		}
	}
	return bars
}

func TestComputeLevels(t *testing.T) {
	// Constant TR of 10 over 16 bars: ATR = 10, stop = ref - 20,
	// target = ref + 40.
	bars := flatBars(16, 100, 10)

	levels := ComputeLevels(bars, 100)
	if levels == nil {
		t.Fatal("ComputeLevels returned nil for sufficient data")
	}
	if levels.ATR != 10 {
		t.Errorf("ATR = %v, want 10", levels.ATR)
	}
	if levels.StopLoss != 80 {
		t.Errorf("StopLoss = %v, want 80", levels.StopLoss)
	}
	if levels.Target != 140 {
		t.Errorf("Target = %v, want 140", levels.Target)
	}
}

func TestComputeLevelsGapExtendsTrueRange(t *testing.T) {
	// 15 gap-free bars then one gapped-up bar: prev close 100, high 112,
	// low 108. Its TR is |112-100| = 12, not the 4-point high-low span.
	bars := flatBars(15, 100, 10)
	bars = append(bars, models.OHLCV{
		Timestamp: bars[14].Timestamp.AddDate(0, 0, 1),
		Open:      110, High: 112, Low: 108, Close: 110, Volume: 1000,
	})

	levels := ComputeLevels(bars, 110)
	if levels == nil {
		t.Fatal("ComputeLevels returned nil")
	}
	// 13 ranges of 10 plus one of 12: ATR = 142/14.
	want := math.Round(142.0/14*100) / 100
	if levels.ATR != want {
		t.Errorf("ATR = %v, want %v", levels.ATR, want)
	}
}

func TestComputeLevelsUsesTrailingWindow(t *testing.T) {
	// Wild early bars beyond the 14-range window must not affect the ATR.
	noisy := flatBars(10, 100, 80)
	noisy = append(noisy, flatBars(16, 100, 10)...)

	levels := ComputeLevels(noisy, 100)
	if levels == nil {
		t.Fatal("ComputeLevels returned nil")
	}
	if levels.ATR != 10 {
		t.Errorf("ATR = %v, want 10 (early bars leaked into the window)", levels.ATR)
	}
}

func TestComputeLevelsRounding(t *testing.T) {
	// TR of 1/3 does not round-trip in binary; levels must come back at
	// two decimals.
	bars := flatBars(16, 100, 1.0/3.0)

	levels := ComputeLevels(bars, 100)
	if levels == nil {
		t.Fatal("ComputeLevels returned nil")
	}
	for name, v := range map[string]float64{
		"ATR":      levels.ATR,
		"StopLoss": levels.StopLoss,
		"Target":   levels.Target,
	} {
		if math.Round(v*100)/100 != v {
			t.Errorf("%s = %v, not rounded to two decimals", name, v)
		}
	}
}

func TestComputeLevelsInsufficientData(t *testing.T) {
	if got := ComputeLevels(flatBars(10, 100, 10), 100); got != nil {
		t.Errorf("10 bars: got %+v, want nil", got)
	}
	if got := ComputeLevels(flatBars(14, 100, 10), 100); got != nil {
		t.Errorf("14 bars: got %+v, want nil", got)
	}
	if got := ComputeLevels(nil, 100); got != nil {
		t.Errorf("no bars: got %+v, want nil", got)
	}
	// 15 bars is the floor: exactly 14 true ranges.
	if got := ComputeLevels(flatBars(15, 100, 10), 100); got == nil {
		t.Error("15 bars: got nil, want levels")
	}
}

func TestComputeLevelsBadReferencePrice(t *testing.T) {
	bars := flatBars(16, 100, 10)
	if got := ComputeLevels(bars, 0); got != nil {
		t.Errorf("zero ref price: got %+v, want nil", got)
	}
	if got := ComputeLevels(bars, -5); got != nil {
		t.Errorf("negative ref price: got %+v, want nil", got)
	}
	if got := ComputeLevels(bars, math.NaN()); got != nil {
		t.Errorf("NaN ref price: got %+v, want nil", got)
	}
}

func TestComputeLevelsDegenerateCandles(t *testing.T) {
	// All bars identical with zero span: ATR is zero, levels unavailable.
	if got := ComputeLevels(flatBars(16, 100, 0), 100); got != nil {
		t.Errorf("zero-volatility series: got %+v, want nil", got)
	}
}
