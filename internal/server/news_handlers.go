package server

import (
	"tintuc/internal/scraper"

	"github.com/gofiber/fiber/v2"
)

// GetNews handles GET /api/news, serving the current scrape snapshot. It
// never triggers a fetch.
func (s *Server) GetNews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", scraper.DefaultArticleLimit)
	return respond(c, fiber.StatusOK, s.newsCache.Articles(limit))
}
