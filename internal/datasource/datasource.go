// Package datasource fetches per-ticker market data from external providers.
// It defines a common Provider interface and implements concrete sources for
// Yahoo Finance and Screener.in, plus an aggregator that falls back between
// them.
package datasource

import (
	"context"
	"fmt"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// Provider is the per-ticker data contract the analyzer consumes. Each
// source may support a subset of methods; unsupported methods return
// ErrNotSupported.
type Provider interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// GetSnapshot returns the fundamental snapshot for the given ticker.
	GetSnapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error)

	// GetHistory returns daily OHLCV candles covering roughly the last
	// `days` calendar days.
	GetHistory(ctx context.Context, ticker string, days int) ([]models.OHLCV, error)
}

// --- Sentinel errors ---

// ErrNotSupported is returned when a data source does not support a method.
var ErrNotSupported = fmt.Errorf("operation not supported by this data source")

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = fmt.Errorf("ticker not found")

// ErrNoData is returned when a source resolves the ticker but has nothing
// usable for it.
var ErrNoData = fmt.Errorf("no data available")
