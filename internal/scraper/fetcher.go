// Package scraper fetches Tuổi Trẻ RSS feeds into an in-memory article cache
// refreshed on a timer.
package scraper

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"tintuc/internal/middleware"
	"tintuc/internal/models"
	"tintuc/internal/observability"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	sourceName  = "Tuổi Trẻ"
	feedURLBase = "https://tuoitre.vn/rss/%s.rss"
)

// Categories is the fixed list of Tuổi Trẻ RSS categories fetched on every
// refresh. Slugs match the site's feed paths.
var Categories = []string{
	"thoi-su",
	"the-gioi",
	"kinh-doanh",
	"cong-nghe",
	"the-thao",
	"giai-tri",
	"giao-duc",
	"suc-khoe",
	"phap-luat",
	"du-lich",
}

var imgSrcRe = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// Fetcher downloads and parses one category feed at a time.
type Fetcher struct {
	parser  *gofeed.Parser
	baseURL string
}

// NewFetcher builds a Fetcher with the given HTTP timeout. An empty baseURL
// uses the live site; tests point it at a local server.
func NewFetcher(timeout time.Duration, baseURL string) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if baseURL == "" {
		baseURL = feedURLBase
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: parser, baseURL: baseURL}
}

// FetchCategory downloads and parses one category's RSS feed.
func (f *Fetcher) FetchCategory(ctx context.Context, category string) ([]models.ScrapedArticle, error) {
	url := fmt.Sprintf(f.baseURL, category)
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch category %s: %w", category, err)
	}

	articles := make([]models.ScrapedArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		}
		articles = append(articles, models.ScrapedArticle{
			ID:          articleID(item.Link),
			Title:       strings.TrimSpace(item.Title),
			Description: stripHTML(item.Description),
			URL:         item.Link,
			ImageURL:    extractImageURL(item.Description),
			PublishedAt: publishedAt,
			Category:    category,
			Source:      sourceName,
		})
	}
	return articles, nil
}

// FetchAll fetches every category sequentially. A failing category is logged,
// counted, and contributes zero articles; the rest of the run proceeds.
func (f *Fetcher) FetchAll(ctx context.Context) []models.ScrapedArticle {
	var all []models.ScrapedArticle
	for _, category := range Categories {
		if ctx.Err() != nil {
			middleware.Logger.Warn("scrape run abandoned", "category", category, "error", ctx.Err())
			break
		}
		articles, err := f.FetchCategory(ctx, category)
		if err != nil {
			observability.ScrapeCategoryErrors.WithLabelValues(category).Inc()
			middleware.Logger.Error("category fetch failed", "category", category, "error", err)
			continue
		}
		all = append(all, articles...)
	}
	return all
}

// articleID derives a stable ID from the article URL: the first 16 hex chars
// of its SHA-1.
func articleID(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

// extractImageURL pulls the first <img src> out of an HTML description.
func extractImageURL(html string) string {
	m := imgSrcRe.FindStringSubmatch(html)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// stripHTML renders an HTML fragment down to whitespace-normalized text.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
