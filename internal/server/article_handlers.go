package server

import (
	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticles handles GET /api/articles
func (s *Server) GetArticles(c *fiber.Ctx) error {
	in := service.ListArticlesInput{
		Params:      pagination.Parse(c, "published_at", "published_at", "created_at", "updated_at", "title", "views"),
		Status:      c.Query("status"),
		Category:    c.Query("category"),
		CurrentUser: currentUser(c),
	}
	if v := c.QueryInt("authorId", 0); v > 0 {
		id := uint(v)
		in.AuthorID = &id
	}
	if v := c.Query("isFeatured"); v != "" {
		featured := v == "true" || v == "1"
		in.IsFeatured = &featured
	}

	result, err := s.articleService.ListArticles(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, result)
}

// GetArticle handles GET /api/articles/:id
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	countView := c.Query("incrementViews") == "true"

	article, err := s.articleService.GetArticle(c.Context(), id, countView)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Drafts and archived articles are only visible to admins and the author.
	if article.Status != models.StatusPublished {
		user := currentUser(c)
		if user == nil || (!user.IsAdmin() && (article.AuthorID == nil || *article.AuthorID != user.ID)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Article", id))
		}
	}
	return respond(c, fiber.StatusOK, article)
}

// GetFeaturedArticles handles GET /api/articles/featured
func (s *Server) GetFeaturedArticles(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	articles, err := s.articleService.Featured(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, articles)
}

// GetCategories handles GET /api/articles/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.articleService.Categories(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, categories)
}

// CreateArticle handles POST /api/articles
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req service.CreateArticleInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Author = currentUser(c)

	article, err := s.articleService.CreateArticle(c.Context(), req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusCreated, article)
}

// UpdateArticle handles PATCH /api/articles/:id
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateArticleInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.ArticleID = id
	req.Caller = currentUser(c)

	article, err := s.articleService.UpdateArticle(c.Context(), req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, article)
}

// DeleteArticle handles DELETE /api/articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.articleService.DeleteArticle(c.Context(), id, currentUser(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Article deleted",
	})
}
