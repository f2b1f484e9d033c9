// Package technical computes volatility-derived trade levels from daily
// candles.
package technical

import (
	"math"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// atrPeriod is the number of true ranges averaged into the ATR. Computing
// that many ranges takes one extra bar, so minBars = atrPeriod + 1.
const (
	atrPeriod = 14
	minBars   = atrPeriod + 1
)

// Stop and target distances in ATR multiples. The asymmetry fixes the
// published risk-reward at 1:2.
const (
	stopATRMult   = 2.0
	targetATRMult = 4.0
)

// ComputeLevels derives the ATR-based stop-loss and target band around
// refPrice. It returns nil when the inputs cannot support the computation:
// fewer than 15 bars, a non-positive reference price, or degenerate candle
// data. Callers treat nil as "levels unavailable", never as an error.
func ComputeLevels(candles []models.OHLCV, refPrice float64) *models.TechnicalLevels {
	if len(candles) < minBars || refPrice <= 0 || math.IsNaN(refPrice) {
		return nil
	}

	atr := averageTrueRange(candles, atrPeriod)
	if math.IsNaN(atr) || atr <= 0 {
		return nil
	}

	return &models.TechnicalLevels{
		ATR:      round2(atr),
		StopLoss: round2(refPrice - stopATRMult*atr),
		Target:   round2(refPrice + targetATRMult*atr),
	}
}

// averageTrueRange returns the simple mean of the last `period` true ranges.
// The true range of a bar extends the high-low span to cover any gap from
// the previous close.
func averageTrueRange(candles []models.OHLCV, period int) float64 {
	if len(candles) < period+1 {
		return math.NaN()
	}

	// Only the trailing window contributes.
	window := candles[len(candles)-period-1:]

	var sum float64
	for i := 1; i < len(window); i++ {
		sum += trueRange(window[i], window[i-1].Close)
	}
	return sum / float64(period)
}

// trueRange computes max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(bar models.OHLCV, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if hc := math.Abs(bar.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(bar.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

// round2 rounds to two decimal places for display-stable price levels.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
