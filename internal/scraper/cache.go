package scraper

import (
	"context"
	"sort"
	"sync"
	"time"

	"tintuc/internal/middleware"
	"tintuc/internal/models"
	"tintuc/internal/observability"
)

// DefaultArticleLimit is how many snapshot articles a query returns when the
// caller does not specify a limit.
const DefaultArticleLimit = 52

// NewsCache holds the scrape snapshot and refreshes it on a timer. Reads are
// served under a read lock and never trigger a fetch. Refresh runs are
// serialized with a TryLock: an in-flight run makes a new tick a no-op, and a
// per-run deadline abandons runs that hang, so the refresher can never wedge.
type NewsCache struct {
	fetcher    *Fetcher
	interval   time.Duration
	runTimeout time.Duration

	refreshMu sync.Mutex

	mu          sync.RWMutex
	articles    []models.ScrapedArticle
	lastUpdated time.Time
}

// NewNewsCache builds an empty cache. interval is the tick between refreshes,
// runTimeout the deadline for a single run (defaults: 30m, half the interval).
func NewNewsCache(fetcher *Fetcher, interval, runTimeout time.Duration) *NewsCache {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if runTimeout <= 0 {
		runTimeout = interval / 2
	}
	return &NewsCache{
		fetcher:    fetcher,
		interval:   interval,
		runTimeout: runTimeout,
	}
}

// Refresh fetches all categories and swaps the snapshot wholesale. When a run
// is already in flight it returns immediately without fetching.
func (c *NewsCache) Refresh(ctx context.Context) {
	if !c.refreshMu.TryLock() {
		observability.ScrapeRuns.WithLabelValues("skipped").Inc()
		middleware.Logger.Info("scrape refresh already in flight, skipping")
		return
	}
	defer c.refreshMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	start := time.Now()
	fetched := c.fetcher.FetchAll(runCtx)
	observability.ScrapeDuration.Observe(time.Since(start).Seconds())

	if len(fetched) == 0 {
		// Keep the previous snapshot rather than publishing an empty one.
		observability.ScrapeRuns.WithLabelValues("empty").Inc()
		middleware.Logger.Warn("scrape refresh produced no articles, keeping previous snapshot")
		return
	}

	articles := dedupeByURL(fetched)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	c.mu.Lock()
	c.articles = articles
	c.lastUpdated = time.Now()
	c.mu.Unlock()

	observability.ScrapeRuns.WithLabelValues("success").Inc()
	observability.ScrapeCacheSize.Set(float64(len(articles)))
	middleware.Logger.Info("scrape refresh complete",
		"articles", len(articles),
		"duration", time.Since(start).String())
}

// Run refreshes immediately, then on every interval tick until ctx is
// cancelled. Intended to run on its own goroutine.
func (c *NewsCache) Run(ctx context.Context) {
	c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			middleware.Logger.Info("scrape refresher stopped")
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// NewsResponse is the payload served from the snapshot.
type NewsResponse struct {
	Articles []models.ScrapedArticle `json:"articles"`
	Stats    models.ScrapeStats      `json:"stats"`
}

// Articles returns the first limit articles of the current snapshot with its
// stats. It never fetches.
func (c *NewsCache) Articles(limit int) NewsResponse {
	if limit <= 0 {
		limit = DefaultArticleLimit
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := limit
	if n > len(c.articles) {
		n = len(c.articles)
	}
	out := make([]models.ScrapedArticle, n)
	copy(out, c.articles[:n])

	return NewsResponse{
		Articles: out,
		Stats: models.ScrapeStats{
			TotalArticles: len(c.articles),
			LastUpdated:   c.lastUpdated,
		},
	}
}

// LastUpdated reports when the snapshot was last swapped. Zero means no
// successful refresh yet.
func (c *NewsCache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}

// dedupeByURL drops later duplicates, keeping the first occurrence.
func dedupeByURL(articles []models.ScrapedArticle) []models.ScrapedArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.ScrapedArticle, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
