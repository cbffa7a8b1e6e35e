// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"tintuc/internal/auth"
	"tintuc/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var seedCategories = []string{
	"thoi-su", "the-gioi", "kinh-doanh", "cong-nghe",
	"the-thao", "giai-tri", "giao-duc", "suc-khoe",
}

// Factory creates domain records with fake but plausible data.
type Factory struct {
	db     *gorm.DB
	nextID int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, nextID: 1000}
}

// CreateUser persists a verified user with the shared seed password.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := auth.HashPassword("Password123")
	if err != nil {
		return nil, err
	}

	f.nextID++
	user := &models.User{
		Name:       gofakeit.Name(),
		Email:      fmt.Sprintf("seed%d.%s", f.nextID, gofakeit.Email()),
		Password:   hash,
		Role:       models.RoleUser,
		IsVerified: true,
		Bio:        gofakeit.Sentence(8),
		Location:   gofakeit.City(),
		ImageURL:   fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildArticle constructs an article for the author without persisting it.
func (f *Factory) BuildArticle(author *models.User, overrides ...func(*models.Article)) *models.Article {
	published := time.Now().Add(-time.Duration(rand.Intn(60*24)) * time.Hour)
	article := &models.Article{
		Title:       gofakeit.Sentence(6),
		Summary:     gofakeit.Sentence(15),
		Content:     gofakeit.Paragraph(3, 5, 8, "\n\n"),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
		Category:    seedCategories[rand.Intn(len(seedCategories))],
		Status:      models.StatusPublished,
		PublishedAt: &published,
		AuthorID:    &author.ID,
		AuthorName:  author.Name,
		Views:       uint(rand.Intn(5000)),
		IsFeatured:  rand.Intn(10) == 0,
	}
	for _, override := range overrides {
		override(article)
	}
	return article
}

// CreateArticle persists an article for the author.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	article := f.BuildArticle(author, overrides...)
	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// CreateArticlesBatch persists articles in chunks.
func (f *Factory) CreateArticlesBatch(articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	return f.db.CreateInBatches(articles, 100).Error
}
