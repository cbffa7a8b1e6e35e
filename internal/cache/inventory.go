package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	ArticleKeyPrefix = "article:%d"
	FeaturedKey      = "articles:featured"
	CategoriesKey    = "articles:categories"
)

const (
	UserTTL       = 5 * time.Minute
	ArticleTTL    = 10 * time.Minute
	FeaturedTTL   = 5 * time.Minute
	CategoriesTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ArticleKey(articleID uint) string {
	return fmt.Sprintf(ArticleKeyPrefix, articleID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateArticle drops the article entry plus the derived featured and
// categories lists, which may embed it.
func InvalidateArticle(ctx context.Context, articleID uint) {
	Invalidate(ctx, ArticleKey(articleID))
	Invalidate(ctx, FeaturedKey)
	Invalidate(ctx, CategoriesKey)
}
