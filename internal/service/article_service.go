package service

import (
	"context"
	"time"

	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/repository"
	"tintuc/internal/validation"
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
}

type ListArticlesInput struct {
	Params      pagination.Params
	Status      string
	Category    string
	AuthorID    *uint
	IsFeatured  *bool
	CurrentUser *models.User
}

type CreateArticleInput struct {
	Author     *models.User
	Title      string            `json:"title"`
	Summary    string            `json:"summary"`
	Content    string            `json:"content"`
	ImageURL   string            `json:"image_url"`
	Images     models.StringList `json:"images"`
	Category   string            `json:"category"`
	Status     string            `json:"status"`
	IsFeatured bool              `json:"is_featured"`
}

type UpdateArticleInput struct {
	ArticleID  uint
	Caller     *models.User
	Title      *string            `json:"title"`
	Summary    *string            `json:"summary"`
	Content    *string            `json:"content"`
	ImageURL   *string            `json:"image_url"`
	Images     *models.StringList `json:"images"`
	Category   *string            `json:"category"`
	Status     *string            `json:"status"`
	IsFeatured *bool              `json:"is_featured"`
	AuthorID   *uint              `json:"author_id"`
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

// ListArticles applies the visibility rule before delegating: anyone who is
// not an admin only ever sees published articles, whatever they asked for.
func (s *ArticleService) ListArticles(ctx context.Context, in ListArticlesInput) (*pagination.Result[models.Article], error) {
	var statuses []string
	if in.CurrentUser != nil && in.CurrentUser.IsAdmin() {
		if in.Status != "" {
			if !models.ValidStatus(in.Status) {
				return nil, models.NewValidationError("Invalid status filter")
			}
			statuses = []string{in.Status}
		}
	} else {
		statuses = []string{models.StatusPublished}
	}

	filter := repository.ArticleFilter{
		Statuses:   statuses,
		Category:   in.Category,
		AuthorID:   in.AuthorID,
		IsFeatured: in.IsFeatured,
	}
	articles, total, err := s.articleRepo.List(ctx, in.Params, filter)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(articles, total, in.Params)
	return &result, nil
}

// GetArticle fetches one article, optionally bumping the view counter. Views
// only count for published articles.
func (s *ArticleService) GetArticle(ctx context.Context, id uint, countView bool) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if countView && article.Status == models.StatusPublished {
		if err := s.articleRepo.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		article.Views++
	}
	return article, nil
}

// CreateArticle creates an article for the author. Only editors and admins
// may choose the initial status; everyone else starts in draft.
func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	if in.Author == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Category != "" {
		if err := validation.ValidateCategory(in.Category); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	status := models.StatusDraft
	if in.Status != "" && in.Author.CanPublish() {
		if !models.ValidStatus(in.Status) {
			return nil, models.NewValidationError("Invalid status")
		}
		status = in.Status
	}

	article := &models.Article{
		Title:      in.Title,
		Summary:    in.Summary,
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		Images:     in.Images,
		Category:   in.Category,
		Status:     status,
		IsFeatured: in.IsFeatured,
		AuthorID:   &in.Author.ID,
		AuthorName: in.Author.Name,
	}
	if status == models.StatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

// UpdateArticle applies a partial patch. Only the author or an admin may
// write; status changes need publish rights, and author reassignment is
// admin-only and silently dropped otherwise.
func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(article, in.Caller); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		article.Title = *in.Title
	}
	if in.Summary != nil {
		article.Summary = *in.Summary
	}
	if in.Content != nil {
		article.Content = *in.Content
	}
	if in.ImageURL != nil {
		article.ImageURL = *in.ImageURL
	}
	if in.Images != nil {
		article.Images = *in.Images
	}
	if in.Category != nil {
		if *in.Category != "" {
			if err := validation.ValidateCategory(*in.Category); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
		}
		article.Category = *in.Category
	}
	if in.Status != nil && *in.Status != article.Status {
		if !models.ValidStatus(*in.Status) {
			return nil, models.NewValidationError("Invalid status")
		}
		// Same gate as create: plain authors cannot publish by patching the
		// status after the fact.
		if !in.Caller.CanPublish() {
			return nil, models.NewForbiddenError("Only editors may change article status")
		}
		if *in.Status == models.StatusPublished && article.PublishedAt == nil {
			now := time.Now()
			article.PublishedAt = &now
		}
		article.Status = *in.Status
	}
	if in.IsFeatured != nil {
		article.IsFeatured = *in.IsFeatured
	}
	if in.AuthorID != nil && in.Caller != nil && in.Caller.IsAdmin() {
		article.AuthorID = in.AuthorID
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

// DeleteArticle removes an article under the same gate as update.
func (s *ArticleService) DeleteArticle(ctx context.Context, id uint, caller *models.User) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(article, caller); err != nil {
		return err
	}
	return s.articleRepo.Delete(ctx, id)
}

// Categories lists the distinct categories of published articles.
func (s *ArticleService) Categories(ctx context.Context) ([]string, error) {
	return s.articleRepo.Categories(ctx)
}

// Featured lists up to limit published featured articles, newest first.
func (s *ArticleService) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	return s.articleRepo.Featured(ctx, limit)
}

func (s *ArticleService) authorize(article *models.Article, caller *models.User) error {
	if caller == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if caller.IsAdmin() {
		return nil
	}
	if article.AuthorID != nil && *article.AuthorID == caller.ID {
		return nil
	}
	return models.NewForbiddenError("You can only modify your own articles")
}
