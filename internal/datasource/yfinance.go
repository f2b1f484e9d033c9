package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/seenimoa/niftyscan/internal/infra"
	"github.com/seenimoa/niftyscan/pkg/models"
	"github.com/seenimoa/niftyscan/pkg/utils"
)

const yfDefaultBaseURL = "https://query1.finance.yahoo.com"

// YFinance implements the Provider interface using the Yahoo Finance API.
type YFinance struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance() *YFinance {
	return NewYFinanceWithBaseURL(yfDefaultBaseURL)
}

// NewYFinanceWithBaseURL creates a Yahoo Finance source against a custom
// endpoint root.
func NewYFinanceWithBaseURL(baseURL string) *YFinance {
	return &YFinance{
		baseURL: baseURL,
		cache:   infra.NewCache(5 * time.Minute),
		limiter: infra.NewRateLimiter(5, time.Second), // 5 req/s
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

// yfNum is Yahoo's {"raw": n, "fmt": "..."} number wrapper. A nil Raw means
// the field is absent for the ticker, which scoring treats differently from
// zero.
type yfNum struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (n *yfNum) value(absent float64) float64 {
	if n == nil || n.Raw == nil {
		return absent
	}
	return *n.Raw
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price *struct {
		RegularMarketPrice *yfNum `json:"regularMarketPrice"`
		Symbol             string `json:"symbol"`
	} `json:"price"`
	SummaryDetail *struct {
		TrailingPE *yfNum `json:"trailingPE"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		ReturnOnEquity *yfNum `json:"returnOnEquity"`
		DebtToEquity   *yfNum `json:"debtToEquity"`
		CurrentPrice   *yfNum `json:"currentPrice"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		PegRatio   *yfNum `json:"pegRatio"`
		TrailingPE *yfNum `json:"trailingPE"`
	} `json:"defaultKeyStatistics"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yfOHLCV `json:"quote"`
	} `json:"indicators"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetSnapshot returns the fundamental snapshot from the quoteSummary API.
// PE and PEG come back as NaN when Yahoo does not report them, so the scorer
// can tell "absent" from "zero".
func (y *YFinance) GetSnapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	yfTicker := utils.ToYahooTicker(ticker)

	cacheKey := "yf:snap:" + yfTicker
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.FundamentalSnapshot), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	modules := "price,summaryDetail,financialData,defaultKeyStatistics"
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", y.baseURL, yfTicker, modules)
	body, _, err := infra.DoGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance summary %s: %w", yfTicker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance summary: %w", err)
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	r := resp.QuoteSummary.Result[0]
	snap := &models.FundamentalSnapshot{
		Ticker:    utils.FromYahooTicker(yfTicker),
		PE:        math.NaN(),
		PEG:       math.NaN(),
		Source:    y.Name(),
		FetchedAt: time.Now(),
	}

	if r.Price != nil {
		snap.Price = r.Price.RegularMarketPrice.value(0)
	}
	if r.FinancialData != nil {
		if snap.Price == 0 {
			snap.Price = r.FinancialData.CurrentPrice.value(0)
		}
		snap.ROE = r.FinancialData.ReturnOnEquity.value(0)
		snap.DebtToEquity = r.FinancialData.DebtToEquity.value(0)
	}
	if r.SummaryDetail != nil {
		snap.PE = r.SummaryDetail.TrailingPE.value(math.NaN())
	}
	if r.DefaultKeyStatistics != nil {
		if math.IsNaN(snap.PE) {
			snap.PE = r.DefaultKeyStatistics.TrailingPE.value(math.NaN())
		}
		snap.PEG = r.DefaultKeyStatistics.PegRatio.value(math.NaN())
	}

	y.cache.Set(cacheKey, snap)
	return snap, nil
}

// GetHistory returns daily OHLCV candles from the chart API. Candles with a
// missing close (holiday gaps) are dropped.
func (y *YFinance) GetHistory(ctx context.Context, ticker string, days int) ([]models.OHLCV, error) {
	yfTicker := utils.ToYahooTicker(ticker)

	cacheKey := fmt.Sprintf("yf:hist:%s:%d", yfTicker, days)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.OHLCV), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, yfTicker, from.Unix(), to.Unix(),
	)

	body, _, err := infra.DoGet(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	candles := parseYFCandles(resp.Chart.Result[0])
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	y.cache.SetWithTTL(cacheKey, candles, 15*time.Minute)
	return candles, nil
}

// --- Helpers ---

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
