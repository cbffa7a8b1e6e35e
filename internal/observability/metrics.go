// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tintuc_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ScrapeRuns counts scrape refresh runs by outcome.
	ScrapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tintuc_scrape_runs_total",
		Help: "Total number of scrape refresh runs by outcome",
	}, []string{"outcome"})

	// ScrapeCategoryErrors counts per-category fetch failures.
	ScrapeCategoryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tintuc_scrape_category_errors_total",
		Help: "Total number of per-category scrape failures",
	}, []string{"category"})

	// ScrapeDuration records the duration of full scrape refresh runs.
	ScrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tintuc_scrape_duration_seconds",
		Help:    "Duration of full scrape refresh runs in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ScrapeCacheSize is the number of articles in the current scrape snapshot.
	ScrapeCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tintuc_scrape_cache_articles",
		Help: "Number of articles held in the scrape cache snapshot",
	})

	// EmailsSent counts outbound emails by kind and outcome.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tintuc_emails_sent_total",
		Help: "Total number of outbound emails by kind and outcome",
	}, []string{"kind", "outcome"})

	// ArticleViews counts view-counter increments.
	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tintuc_article_views_total",
		Help: "Total number of article view increments",
	})
)
