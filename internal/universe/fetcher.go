package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/niftyscan/internal/infra"
	"github.com/seenimoa/niftyscan/pkg/models"
	"github.com/seenimoa/niftyscan/pkg/utils"
)

const defaultBaseURL = "https://niftyindices.com"

// ErrNoSymbolColumn is returned when a constituent CSV has no column whose
// name contains "Symbol".
var ErrNoSymbolColumn = fmt.Errorf("no symbol column in constituent list")

// ProgressFunc receives incremental sector fetch progress.
type ProgressFunc func(done, total int, sector string)

// Fetcher retrieves sector constituent lists and merges them into a single
// deduplicated ticker universe. A failing sector contributes zero tickers;
// it never aborts the other sectors.
type Fetcher struct {
	baseURL string
	sectors []models.SectorIndex
	cache   *infra.Cache
	limiter *infra.RateLimiter
	log     zerolog.Logger
}

// NewFetcher creates a universe fetcher over the default sector registry.
// Results are cached for cacheTTL since sector composition changes rarely.
func NewFetcher(log zerolog.Logger, cacheTTL time.Duration) *Fetcher {
	return NewFetcherWithBaseURL(log, cacheTTL, defaultBaseURL)
}

// NewFetcherWithBaseURL creates a fetcher against a custom endpoint root.
func NewFetcherWithBaseURL(log zerolog.Logger, cacheTTL time.Duration, baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sectors: Sectors,
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(5, time.Second),
		log:     log,
	}
}

// FetchAll returns the deduplicated, sorted ticker universe across all
// sectors, in Yahoo Finance format (.NS suffix). Per-sector failures are
// absorbed; the only returned error is context cancellation. The progress
// callback may be nil.
func (f *Fetcher) FetchAll(ctx context.Context, progress ProgressFunc) ([]string, error) {
	const cacheKey = "universe:all"
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.([]string), nil
	}

	seen := make(map[string]struct{})
	total := len(f.sectors)

	for i, sector := range f.sectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		symbols, err := f.fetchSector(ctx, sector)
		if err != nil {
			// Best-effort merge: partial sector coverage is acceptable.
			f.log.Warn().Err(err).Str("sector", sector.Name).Msg("sector fetch failed, skipping")
		}
		for _, sym := range symbols {
			seen[sym] = struct{}{}
		}

		if progress != nil {
			progress(i+1, total, sector.Name)
		}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	if len(tickers) > 0 {
		f.cache.Set(cacheKey, tickers)
	}
	return tickers, nil
}

// FetchedAt returns when the cached universe was fetched, if a valid cached
// result exists.
func (f *Fetcher) FetchedAt() (time.Time, bool) {
	return f.cache.FetchedAt("universe:all")
}

// fetchSector retrieves and parses one sector's constituent CSV.
func (f *Fetcher) fetchSector(ctx context.Context, sector models.SectorIndex) ([]string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/IndexConstituent/ind_nifty%slist.csv", f.baseURL, sector.Slug)
	body, _, err := infra.DoGet(ctx, url, map[string]string{
		"Accept": "text/csv",
	})
	if err != nil {
		return nil, fmt.Errorf("constituent list %s: %w", sector.Slug, err)
	}
	defer body.Close()

	symbols, err := parseConstituents(body)
	if err != nil {
		return nil, fmt.Errorf("parse constituent list %s: %w", sector.Slug, err)
	}
	return symbols, nil
}

// parseConstituents extracts ticker symbols from a constituent CSV. The
// symbol column is located by substring match ("Symbol") to tolerate
// provider column-naming drift. Placeholder rows ("DUMMY" in any case) are
// rejected; survivors are normalized to the .NS convention.
func parseConstituents(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // provider rows are occasionally ragged
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	symbolCol := -1
	for i, name := range header {
		if strings.Contains(name, "Symbol") {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, ErrNoSymbolColumn
	}

	var symbols []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if symbolCol >= len(record) {
			continue
		}

		sym := strings.TrimSpace(record[symbolCol])
		if sym == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(sym), "DUMMY") {
			continue
		}
		symbols = append(symbols, utils.ToYahooTicker(sym))
	}
	return symbols, nil
}
