// Package scan runs the full screening pipeline: per-ticker analysis under
// a bounded worker pool, then ranking into report tiers.
package scan

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/niftyscan/internal/analysis/fundamental"
	"github.com/seenimoa/niftyscan/internal/analysis/technical"
	"github.com/seenimoa/niftyscan/internal/datasource"
	"github.com/seenimoa/niftyscan/pkg/models"
)

// historyDays is the calendar window requested for the levels computation.
// Thirty days of daily bars leaves headroom over the 15-bar ATR minimum
// after weekends and holidays.
const historyDays = 30

// maxJitter caps the random politeness delay before each ticker's first
// request.
const maxJitter = 500 * time.Millisecond

// levelsMinScore gates the second network round-trip: only tickers that
// already qualify for a report tier are worth a history fetch.
const levelsMinScore = 2

// Analyzer evaluates one ticker end to end: fetch fundamentals, score them,
// and compute technical levels for qualifying tickers. It always produces a
// record; any failure becomes an error record rather than a panic or a
// dropped ticker.
type Analyzer struct {
	provider   datasource.Provider
	thresholds fundamental.Thresholds
	jitter     bool
	log        zerolog.Logger
}

// NewAnalyzer creates an analyzer over the given data provider.
func NewAnalyzer(provider datasource.Provider, th fundamental.Thresholds, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider:   provider,
		thresholds: th,
		jitter:     true,
		log:        log,
	}
}

// Analyze produces exactly one record for the ticker. Panics from provider
// or parsing code surface as error records so a bad ticker never takes down
// the scan.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (rec models.AnalysisRecord) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("ticker", ticker).Interface("panic", r).Msg("analyzer panic recovered")
			rec = models.NewErrorRecord(ticker, fmt.Errorf("internal error: %v", r))
		}
	}()

	if a.jitter {
		if err := sleepJitter(ctx); err != nil {
			return models.NewErrorRecord(ticker, err)
		}
	}

	snap, err := a.provider.GetSnapshot(ctx, ticker)
	if err != nil {
		return models.NewErrorRecord(ticker, err)
	}
	if snap.Empty() {
		return models.NewErrorRecord(ticker, fmt.Errorf("%w: empty snapshot", datasource.ErrNoData))
	}

	score := fundamental.Score(snap, a.thresholds)
	debtEquity := fundamental.NormalizeDebtEquity(snap.DebtToEquity)

	// Levels are best-effort: a failed or thin history degrades to a
	// result without levels, never to an error record.
	var levels *models.TechnicalLevels
	if score.Score >= levelsMinScore {
		candles, err := a.provider.GetHistory(ctx, ticker, historyDays)
		if err != nil {
			a.log.Debug().Err(err).Str("ticker", ticker).Msg("history fetch failed, levels unavailable")
		} else {
			levels = technical.ComputeLevels(candles, snap.Price)
		}
	}

	return models.NewResultRecord(snap, score, debtEquity, levels)
}

// sleepJitter waits a random sub-second delay, abandoning the wait on
// context cancellation. It spreads worker start times so a fresh pool does
// not burst-hit the provider.
func sleepJitter(ctx context.Context) error {
	d := time.Duration(rand.Int63n(int64(maxJitter)))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
