package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// Aggregator chains data sources in priority order, falling back to the
// next source when the preferred one errors or returns an unusable
// snapshot. It implements Provider itself so callers never see the
// fan-out.
type Aggregator struct {
	sources []Provider
	log     zerolog.Logger
}

// NewAggregator creates the default source chain: Yahoo Finance first,
// Screener.in as the fundamentals fallback.
func NewAggregator(log zerolog.Logger) *Aggregator {
	return NewAggregatorWithSources(log, NewYFinance(), NewScreener())
}

// NewAggregatorWithSources creates an aggregator over an explicit chain.
func NewAggregatorWithSources(log zerolog.Logger, sources ...Provider) *Aggregator {
	return &Aggregator{sources: sources, log: log}
}

// Name returns the data source name.
func (a *Aggregator) Name() string { return "Aggregated" }

// GetSnapshot returns the first usable snapshot from the chain. A source
// that errors, or answers with an empty snapshot, yields to the next one.
func (a *Aggregator) GetSnapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	var lastErr error
	for _, src := range a.sources {
		snap, err := src.GetSnapshot(ctx, ticker)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			a.log.Debug().Err(err).Str("ticker", ticker).Str("source", src.Name()).
				Msg("snapshot fetch failed, trying next source")
			lastErr = err
			continue
		}
		if snap.Empty() {
			lastErr = fmt.Errorf("%w: %s via %s", ErrNoData, ticker, src.Name())
			continue
		}
		return snap, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	return nil, lastErr
}

// GetHistory returns candles from the first source in the chain that
// supports history.
func (a *Aggregator) GetHistory(ctx context.Context, ticker string, days int) ([]models.OHLCV, error) {
	var lastErr error
	for _, src := range a.sources {
		candles, err := src.GetHistory(ctx, ticker, days)
		if err != nil {
			if errors.Is(err, ErrNotSupported) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
			continue
		}
		return candles, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no source provides history", ErrNotSupported)
	}
	return nil, lastErr
}
