package datasource

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/niftyscan/internal/infra"
	"github.com/seenimoa/niftyscan/pkg/models"
	"github.com/seenimoa/niftyscan/pkg/utils"
)

const screenerDefaultBaseURL = "https://www.screener.in"

// Screener implements the Provider interface by scraping the Screener.in
// company page. It serves as the fundamentals fallback when Yahoo Finance
// has nothing for a ticker.
type Screener struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewScreener creates a new Screener.in data source.
func NewScreener() *Screener {
	return NewScreenerWithBaseURL(screenerDefaultBaseURL)
}

// NewScreenerWithBaseURL creates a Screener.in source against a custom
// endpoint root.
func NewScreenerWithBaseURL(baseURL string) *Screener {
	return &Screener{
		baseURL: baseURL,
		cache:   infra.NewCache(30 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second), // conservative: 1 req/s
	}
}

// Name returns the data source name.
func (s *Screener) Name() string { return "Screener.in" }

// GetSnapshot returns a fundamental snapshot scraped from the top-ratios
// list on the company page. Screener quotes ROE as a percentage; it is
// rescaled to a fraction to match the Yahoo Finance convention.
func (s *Screener) GetSnapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := "scr:snap:" + symbol
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.FundamentalSnapshot), nil
	}

	doc, err := s.fetchPage(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snap := parseScreenerSnapshot(doc, symbol)
	snap.Source = s.Name()
	snap.FetchedAt = time.Now()
	if snap.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	s.cache.Set(cacheKey, snap)
	return snap, nil
}

// GetHistory is not supported by Screener.in.
func (s *Screener) GetHistory(_ context.Context, _ string, _ int) ([]models.OHLCV, error) {
	return nil, ErrNotSupported
}

// --- Internal helpers ---

// fetchPage downloads and parses the Screener.in company page, preferring
// consolidated figures.
func (s *Screener) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, symbol)
	body, _, err := infra.DoGet(ctx, url, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		// Try standalone if consolidated not found.
		url = fmt.Sprintf("%s/company/%s/", s.baseURL, symbol)
		body, _, err = infra.DoGet(ctx, url, map[string]string{
			"Accept": "text/html",
		})
		if err != nil {
			return nil, fmt.Errorf("screener.in %s: %w", symbol, err)
		}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse screener HTML: %w", err)
	}

	return doc, nil
}

// parseScreenerSnapshot extracts snapshot fields from the top-ratios list.
// PE and PEG stay NaN when their rows are missing from the page.
func parseScreenerSnapshot(doc *goquery.Document, symbol string) *models.FundamentalSnapshot {
	snap := &models.FundamentalSnapshot{
		Ticker: symbol,
		PE:     math.NaN(),
		PEG:    math.NaN(),
	}

	doc.Find("#top-ratios li").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").Text())
		val, ok := parseScreenerNumber(sel.Find(".number").Text())
		if !ok {
			return
		}

		switch {
		case strings.Contains(name, "Current Price"):
			snap.Price = val
		case strings.Contains(name, "Stock P/E"):
			snap.PE = val
		case strings.Contains(name, "PEG"):
			snap.PEG = val
		case strings.Contains(name, "ROE"):
			snap.ROE = val / 100 // quoted as a percentage
		case strings.Contains(name, "Debt to equity"):
			snap.DebtToEquity = val
		}
	})

	return snap
}

// parseScreenerNumber parses a number from Screener.in display format,
// stripping commas, percent signs and the rupee symbol.
func parseScreenerNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}
