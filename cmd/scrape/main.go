// Command scrape fetches the Tuổi Trẻ feeds once and imports the articles
// into the database, keyed by source URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tintuc/internal/config"
	"tintuc/internal/database"
	"tintuc/internal/models"
	"tintuc/internal/repository"
	"tintuc/internal/scraper"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	timeout := flag.Duration("timeout", 5*time.Minute, "Deadline for the whole import")
	publish := flag.Bool("publish", true, "Import articles as published rather than draft")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	articleRepo := repository.NewArticleRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fetcher := scraper.NewFetcher(cfg.ScrapeTimeout, "")
	scraped := fetcher.FetchAll(ctx)
	log.Printf("fetched %d articles", len(scraped))

	status := models.StatusDraft
	if *publish {
		status = models.StatusPublished
	}

	created, updated := 0, 0
	for _, item := range scraped {
		existing, err := articleRepo.GetBySourceURL(ctx, item.URL)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", item.URL, err)
		}

		if existing != nil {
			existing.Title = item.Title
			existing.Summary = item.Description
			existing.ImageURL = item.ImageURL
			existing.Category = item.Category
			if err := articleRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("update %s: %w", item.URL, err)
			}
			updated++
			continue
		}

		sourceURL := item.URL
		publishedAt := item.PublishedAt
		article := &models.Article{
			Title:       item.Title,
			Summary:     item.Description,
			ImageURL:    item.ImageURL,
			SourceURL:   &sourceURL,
			Category:    item.Category,
			AuthorName:  item.Source,
			Status:      status,
			PublishedAt: &publishedAt,
		}
		if err := articleRepo.Create(ctx, article); err != nil {
			return fmt.Errorf("create %s: %w", item.URL, err)
		}
		created++
	}

	log.Printf("import complete: %d created, %d updated", created, updated)
	return nil
}
