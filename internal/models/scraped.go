package models

import "time"

// ScrapedArticle is a transient article-shaped record produced by the scrape
// pipeline. It lives only in the in-memory snapshot and is never persisted
// unless the scrape command explicitly imports it.
type ScrapedArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
}

// ScrapeStats describes the current scrape snapshot.
type ScrapeStats struct {
	TotalArticles int       `json:"total_articles"`
	LastUpdated   time.Time `json:"last_updated"`
}
