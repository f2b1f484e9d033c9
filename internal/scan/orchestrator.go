package scan

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/niftyscan/pkg/models"
)

// Worker pool bounds. The provider throttles aggressive clients, so the
// ceiling stays low even on large machines.
const (
	minWorkers = 1
	maxWorkers = 20
)

// Tier cut-offs on the four-rule score.
const (
	topPickMinScore = 3
	watchlistScore  = 2
)

// SortBy selects the tie-break applied within a score band.
type SortBy string

const (
	// SortByPEG ranks cheaper growth first; tickers without a PEG sort
	// last within their band.
	SortByPEG SortBy = "peg"
	// SortByROE ranks higher returns on equity first.
	SortByROE SortBy = "roe"
)

// Orchestrator fans tickers out over a bounded worker pool and owns the
// merge: workers only hand records back, they never touch shared state.
type Orchestrator struct {
	analyzer *Analyzer
	workers  int
	sortBy   SortBy
	log      zerolog.Logger
}

// NewOrchestrator creates an orchestrator. The worker count is clamped to
// the pool bounds.
func NewOrchestrator(analyzer *Analyzer, workers int, sortBy SortBy, log zerolog.Logger) *Orchestrator {
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if sortBy != SortByROE {
		sortBy = SortByPEG
	}
	return &Orchestrator{
		analyzer: analyzer,
		workers:  workers,
		sortBy:   sortBy,
		log:      log,
	}
}

// Scan analyzes every ticker and assembles the ranked report. Each ticker
// contributes exactly one record: a scored result or an error marker.
// Cancellation stops dispatching new tickers; records already produced are
// still reported.
func (o *Orchestrator) Scan(ctx context.Context, tickers []string, progress ProgressFunc) *models.ScanReport {
	start := time.Now()
	report := &models.ScanReport{Total: len(tickers)}
	if len(tickers) == 0 {
		return report
	}

	results := make(chan models.AnalysisRecord, len(tickers))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, ticker := range tickers {
		ticker := ticker
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec := o.analyzer.Analyze(gctx, ticker)
			results <- rec
			if progress != nil {
				progress(int(done.Add(1)), len(tickers), ticker)
			}
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures travel as records
	close(results)

	for rec := range results {
		switch {
		case rec.Failed():
			report.Errors = append(report.Errors, rec)
		case rec.Score.Score >= topPickMinScore:
			report.TopPicks = append(report.TopPicks, rec)
		case rec.Score.Score == watchlistScore:
			report.Watchlist = append(report.Watchlist, rec)
		}
		// Scores of 0 and 1 are dropped: they appear in no tier.
	}

	o.rank(report.TopPicks)
	o.rank(report.Watchlist)
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Ticker < report.Errors[j].Ticker
	})

	report.Duration = time.Since(start)
	o.log.Info().
		Int("total", report.Total).
		Int("top_picks", len(report.TopPicks)).
		Int("watchlist", len(report.Watchlist)).
		Int("errors", len(report.Errors)).
		Dur("duration", report.Duration).
		Msg("scan complete")
	return report
}

// ProgressFunc receives incremental per-ticker completion, in completion
// order.
type ProgressFunc func(done, total int, ticker string)

// rank orders records by score descending, then by the configured
// tie-break, then by ticker for a stable display order.
func (o *Orchestrator) rank(recs []models.AnalysisRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score.Score != b.Score.Score {
			return a.Score.Score > b.Score.Score
		}
		switch o.sortBy {
		case SortByROE:
			if a.ROEPct != b.ROEPct {
				return a.ROEPct > b.ROEPct
			}
		default:
			pa, pb := pegKey(a.PEG), pegKey(b.PEG)
			if pa != pb {
				return pa < pb
			}
		}
		return a.Ticker < b.Ticker
	})
}

// pegKey maps an absent PEG to the end of its score band.
func pegKey(peg float64) float64 {
	if math.IsNaN(peg) {
		return math.MaxFloat64
	}
	return peg
}
