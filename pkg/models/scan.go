package models

import (
	"fmt"
	"time"
)

// Verdict labels derived from the rule score. The mapping is exhaustive:
// 4 → STRONG BUY, 3 → Quality Buy, 2 → Watchlist, everything else → Avoid.
const (
	VerdictStrongBuy  = "STRONG BUY"
	VerdictQualityBuy = "Quality Buy"
	VerdictWatchlist  = "Watchlist"
	VerdictAvoid      = "Avoid"
)

// ScoreResult holds the outcome of the four-rule fundamental evaluation.
type ScoreResult struct {
	Score       int      `json:"score"`                  // 0–4
	RulesPassed []string `json:"rules_passed,omitempty"` // diagnostic
	Verdict     string   `json:"verdict"`
}

// AnalysisRecord is the terminal unit of scan work: either a fully scored
// result for one ticker, or an error marker for it — never both. Use
// NewResultRecord and NewErrorRecord to construct; Failed distinguishes
// the two. Records are immutable after creation.
type AnalysisRecord struct {
	Ticker     string           `json:"ticker"`
	Price      float64          `json:"price,omitempty"`
	Score      ScoreResult      `json:"score,omitempty"`
	ROEPct     float64          `json:"roe_pct,omitempty"`
	DebtEquity float64          `json:"debt_equity,omitempty"` // normalized ratio
	PE         float64          `json:"pe,omitempty"`          // NaN when absent
	PEG        float64          `json:"peg,omitempty"`         // NaN when absent
	Levels     *TechnicalLevels `json:"levels,omitempty"`
	RiskReward string           `json:"risk_reward,omitempty"` // "1:2" when Levels set
	Err        string           `json:"error,omitempty"`
}

// NewErrorRecord creates an error-marker record for a ticker.
func NewErrorRecord(ticker string, err error) AnalysisRecord {
	reason := "unknown failure"
	if err != nil {
		reason = err.Error()
	}
	return AnalysisRecord{Ticker: ticker, Err: reason}
}

// NewResultRecord creates a scored result record. Levels may be nil when the
// technical computation was degraded or skipped.
func NewResultRecord(snap *FundamentalSnapshot, score ScoreResult, debtEquity float64, levels *TechnicalLevels) AnalysisRecord {
	rec := AnalysisRecord{
		Ticker:     snap.Ticker,
		Price:      snap.Price,
		Score:      score,
		ROEPct:     snap.ROE * 100,
		DebtEquity: debtEquity,
		PE:         snap.PE,
		PEG:        snap.PEG,
		Levels:     levels,
	}
	if levels != nil {
		rec.RiskReward = "1:2"
	}
	return rec
}

// Failed reports whether this record carries an error instead of a result.
func (r AnalysisRecord) Failed() bool { return r.Err != "" }

// ScanReport is what a full scan hands to the presentation layer: two ranked
// tiers plus the error records for the optional debug view.
type ScanReport struct {
	Total     int              `json:"total"`     // tickers dispatched
	TopPicks  []AnalysisRecord `json:"top_picks"` // score >= 3
	Watchlist []AnalysisRecord `json:"watchlist"` // score == 2
	Errors    []AnalysisRecord `json:"errors,omitempty"`
	Duration  time.Duration    `json:"duration"`
}

// Matches reports whether the scan surfaced any qualifying result.
func (r *ScanReport) Matches() int { return len(r.TopPicks) + len(r.Watchlist) }

// EmptyState describes a scan that produced no rows, distinguishing a
// universe that could not be fetched from one where nothing qualified.
func (r *ScanReport) EmptyState() string {
	if r.Total == 0 {
		return "no tickers could be fetched from any sector list"
	}
	return fmt.Sprintf("no stocks matched the criteria (%d analyzed)", r.Total)
}
