package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/niftyscan/internal/infra"
	"github.com/seenimoa/niftyscan/pkg/models"
	"github.com/seenimoa/niftyscan/pkg/utils"
)

// NewsSource represents an Indian financial news feed.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the configured Indian financial news RSS feeds.
var DefaultNewsSources = []NewsSource{
	{
		Name:   "Moneycontrol",
		RSSURL: "https://www.moneycontrol.com/rss/marketreports.xml",
	},
	{
		Name:   "Economic Times Markets",
		RSSURL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	},
	{
		Name:   "LiveMint Markets",
		RSSURL: "https://www.livemint.com/rss/markets",
	},
	{
		Name:   "Business Standard Markets",
		RSSURL: "https://www.business-standard.com/rss/markets-106.rss",
	},
}

// News fetches financial news from Indian RSS sources.
type News struct {
	sources []NewsSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news fetcher with the default Indian sources.
func NewNews() *News {
	return NewNewsWithSources(DefaultNewsSources)
}

// NewNewsWithSources creates a news fetcher with custom sources.
func NewNewsWithSources(sources []NewsSource) *News {
	return &News{
		sources: sources,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// GetMarketNews returns recent market news merged from all configured
// sources, newest first.
func (n *News) GetMarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range n.sources {
		articles, err := n.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, articles...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// GetStockNews returns news articles mentioning a specific ticker.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := fmt.Sprintf("news:stock:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	all, err := n.GetMarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(symbol)
	var filtered []models.NewsArticle
	for _, a := range all {
		content := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(content, needle) {
			filtered = append(filtered, a)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// fetchRSS parses one RSS feed into articles.
func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			Link:    item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
