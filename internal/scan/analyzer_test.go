package scan

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/niftyscan/internal/analysis/fundamental"
	"github.com/seenimoa/niftyscan/pkg/models"
)

// fakeProvider scripts per-ticker responses for pipeline tests.
type fakeProvider struct {
	snaps   map[string]*models.FundamentalSnapshot
	history map[string][]models.OHLCV
	histErr error
	panicOn string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) GetSnapshot(_ context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	if ticker == p.panicOn {
		panic("scripted panic")
	}
	snap, ok := p.snaps[ticker]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s", ticker)
	}
	return snap, nil
}

func (p *fakeProvider) GetHistory(_ context.Context, ticker string, _ int) ([]models.OHLCV, error) {
	if p.histErr != nil {
		return nil, p.histErr
	}
	return p.history[ticker], nil
}

// candles builds n gap-free bars with constant span around close.
func candles(n int, close, span float64) []models.OHLCV {
	bars := make([]models.OHLCV, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.OHLCV{
			Timestamp: ts.AddDate(0, 0, i),
			Open:      close, High: close + span/2, Low: close - span/2,
			Close: close, Volume: 1000,
		}
	}
	return bars
}

func strongSnap(ticker string) *models.FundamentalSnapshot {
	return &models.FundamentalSnapshot{
		Ticker: ticker, Price: 100,
		ROE: 0.20, DebtToEquity: 0.5, PEG: 1.2, PE: 22,
	}
}

func newTestAnalyzer(p *fakeProvider) *Analyzer {
	a := NewAnalyzer(p, fundamental.Tolerant, zerolog.Nop())
	a.jitter = false
	return a
}

func TestAnalyzeStrongResult(t *testing.T) {
	p := &fakeProvider{
		snaps:   map[string]*models.FundamentalSnapshot{"AAA": strongSnap("AAA")},
		history: map[string][]models.OHLCV{"AAA": candles(20, 100, 10)},
	}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "AAA")
	if rec.Failed() {
		t.Fatalf("unexpected error record: %s", rec.Err)
	}
	if rec.Score.Score != 4 {
		t.Errorf("Score = %d, want 4", rec.Score.Score)
	}
	if rec.Score.Verdict != models.VerdictStrongBuy {
		t.Errorf("Verdict = %q, want %q", rec.Score.Verdict, models.VerdictStrongBuy)
	}
	if rec.Levels == nil {
		t.Fatal("Levels = nil, want computed levels for a qualifying score")
	}
	if rec.Levels.StopLoss != 80 || rec.Levels.Target != 140 {
		t.Errorf("levels = %+v, want stop 80 target 140", rec.Levels)
	}
	if rec.RiskReward != "1:2" {
		t.Errorf("RiskReward = %q, want 1:2", rec.RiskReward)
	}
	if rec.ROEPct != 20 {
		t.Errorf("ROEPct = %v, want 20", rec.ROEPct)
	}
}

func TestAnalyzeSkipsHistoryForLowScore(t *testing.T) {
	// Score 0: no tier, so no history round-trip and no levels.
	p := &fakeProvider{
		snaps: map[string]*models.FundamentalSnapshot{
			"BAD": {Ticker: "BAD", Price: 50, ROE: 0.01, DebtToEquity: 5, PEG: -1, PE: 90},
		},
		histErr: fmt.Errorf("history should not be fetched"),
	}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "BAD")
	if rec.Failed() {
		t.Fatalf("unexpected error record: %s", rec.Err)
	}
	if rec.Score.Score != 0 {
		t.Errorf("Score = %d, want 0", rec.Score.Score)
	}
	if rec.Levels != nil {
		t.Errorf("Levels = %+v, want nil", rec.Levels)
	}
}

func TestAnalyzeDegradesOnThinHistory(t *testing.T) {
	// Qualifying score but only 10 bars: still a result, just without levels.
	p := &fakeProvider{
		snaps:   map[string]*models.FundamentalSnapshot{"THIN": strongSnap("THIN")},
		history: map[string][]models.OHLCV{"THIN": candles(10, 100, 10)},
	}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "THIN")
	if rec.Failed() {
		t.Fatalf("unexpected error record: %s", rec.Err)
	}
	if rec.Levels != nil {
		t.Errorf("Levels = %+v, want nil for thin history", rec.Levels)
	}
	if rec.RiskReward != "" {
		t.Errorf("RiskReward = %q, want empty without levels", rec.RiskReward)
	}
}

func TestAnalyzeDegradesOnHistoryError(t *testing.T) {
	p := &fakeProvider{
		snaps:   map[string]*models.FundamentalSnapshot{"HERR": strongSnap("HERR")},
		histErr: fmt.Errorf("chart API down"),
	}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "HERR")
	if rec.Failed() {
		t.Fatalf("history failure must degrade, not fail: %s", rec.Err)
	}
	if rec.Score.Score != 4 {
		t.Errorf("Score = %d, want 4", rec.Score.Score)
	}
	if rec.Levels != nil {
		t.Errorf("Levels = %+v, want nil", rec.Levels)
	}
}

func TestAnalyzeErrorRecord(t *testing.T) {
	p := &fakeProvider{snaps: map[string]*models.FundamentalSnapshot{}}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "MISSING")
	if !rec.Failed() {
		t.Fatal("expected an error record for an unknown ticker")
	}
	if rec.Ticker != "MISSING" {
		t.Errorf("Ticker = %q, want MISSING", rec.Ticker)
	}
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	p := &fakeProvider{
		snaps: map[string]*models.FundamentalSnapshot{
			"EMPTY": {Ticker: "EMPTY", Price: math.NaN()},
		},
	}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "EMPTY")
	if !rec.Failed() {
		t.Fatal("expected an error record for an empty snapshot")
	}
}

func TestAnalyzeRecoversPanic(t *testing.T) {
	p := &fakeProvider{panicOn: "BOOM"}

	rec := newTestAnalyzer(p).Analyze(context.Background(), "BOOM")
	if !rec.Failed() {
		t.Fatal("expected an error record for a panicking provider")
	}
	if rec.Ticker != "BOOM" {
		t.Errorf("Ticker = %q, want BOOM", rec.Ticker)
	}
}
