package repository

import (
	"context"
	"errors"

	"tintuc/internal/cache"
	"tintuc/internal/models"
	"tintuc/internal/observability"
	"tintuc/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleFilter narrows an article listing. A zero value means "no filter"
// for that field; Statuses is mandatory filtering applied by the service
// layer according to the caller's role.
type ArticleFilter struct {
	Statuses   []string
	Category   string
	AuthorID   *uint
	IsFeatured *bool
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params pagination.Params, filter ArticleFilter) ([]models.Article, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	Categories(ctx context.Context) ([]string, error)
	Featured(ctx context.Context, limit int) ([]models.Article, error)
	GetBySourceURL(ctx context.Context, sourceURL string) (*models.Article, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article

	err := cache.Aside(ctx, cache.ArticleKey(id), &article, cache.ArticleTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "name", "email")
			}).
			First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.TranslateDBError(err, "create article")
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	// Author is a trimmed read-side preload; never write it back from here.
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(article).Error; err != nil {
		return models.TranslateDBError(err, "update article")
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return models.TranslateDBError(err, "delete article")
	}
	cache.InvalidateArticle(ctx, id)
	return nil
}

func (r *articleRepository) List(ctx context.Context, params pagination.Params, filter ArticleFilter) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Article{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.IsFeatured != nil {
		q = q.Where("is_featured = ?", *filter.IsFeatured)
	}
	q = params.ApplySearch(q, "title", "summary", "content")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	q = q.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	})
	q = params.ApplyOrder(q)
	q = params.ApplyLimits(q)
	if err := q.Find(&articles).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

// IncrementViews bumps the view counter in a single UPDATE so concurrent
// reads never lose more than last-write-wins precision.
func (r *articleRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return models.TranslateDBError(err, "increment views")
	}
	observability.ArticleViews.Inc()
	cache.Invalidate(ctx, cache.ArticleKey(id))
	return nil
}

func (r *articleRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string

	err := cache.Aside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Article{}).
			Where("status = ? AND category <> ''", models.StatusPublished).
			Distinct().
			Order("category").
			Pluck("category", &categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// featuredCacheLimit is how many rows the shared featured entry holds. Every
// request up to this size is a slice of the same cached list, so the entry
// never depends on whichever limit happened to warm it.
const featuredCacheLimit = 20

func (r *articleRepository) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = 5
	}

	fetch := func(dest *[]models.Article, n int) error {
		if err := r.db.WithContext(ctx).
			Where("status = ? AND is_featured = ?", models.StatusPublished, true).
			Order("published_at DESC").
			Limit(n).
			Find(dest).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	var articles []models.Article
	if limit > featuredCacheLimit {
		if err := fetch(&articles, limit); err != nil {
			return nil, err
		}
		return articles, nil
	}

	err := cache.Aside(ctx, cache.FeaturedKey, &articles, cache.FeaturedTTL, func() error {
		return fetch(&articles, featuredCacheLimit)
	})
	if err != nil {
		return nil, err
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (r *articleRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}
