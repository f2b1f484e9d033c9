// Package models defines the core data structures used throughout NiftyScan.
package models

import (
	"math"
	"time"
)

// SectorIndex pairs a human-readable NSE sectoral index name with the slug
// used by the index provider's constituent-list endpoint.
type SectorIndex struct {
	Name string `json:"name"` // e.g., "PSU Bank"
	Slug string `json:"slug"` // e.g., "psubank"
}

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// FundamentalSnapshot is a point-in-time read of the fundamental fields the
// scorer consumes. It is never persisted or compared across runs.
//
// PE and PEG are NaN when the provider does not report them. ROE and
// DebtToEquity default to zero when absent, matching the provider's
// behaviour; DebtToEquity is kept in raw provider units (sometimes a ratio,
// sometimes percent-scaled — see fundamental.NormalizeDebtEquity).
type FundamentalSnapshot struct {
	Ticker       string    `json:"ticker"` // display form, no exchange suffix
	Price        float64   `json:"price"`  // 0 when unavailable
	ROE          float64   `json:"roe"`    // fractional, e.g. 0.18 for 18%
	DebtToEquity float64   `json:"debt_to_equity"`
	PE           float64   `json:"pe"`
	PEG          float64   `json:"peg"`
	Source       string    `json:"source,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Empty reports whether the snapshot is unusable for scoring: the provider
// returned nothing, or no current price.
func (s *FundamentalSnapshot) Empty() bool {
	return s == nil || s.Price <= 0 || math.IsNaN(s.Price)
}

// TechnicalLevels holds the volatility-derived exit band for one ticker:
// stop-loss at 2×ATR below the reference price, target at 4×ATR above.
type TechnicalLevels struct {
	ATR      float64 `json:"atr"`
	StopLoss float64 `json:"stop_loss"`
	Target   float64 `json:"target"`
}

// NewsArticle represents a single financial news item.
type NewsArticle struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
