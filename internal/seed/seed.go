package seed

import (
	"fmt"
	"log"
	"math/rand"

	"tintuc/internal/auth"
	"tintuc/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	ShouldClean bool
}

// Seed populates the database with test data: an admin, an editor, a set of
// readers, and a mix of articles across statuses.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d articles...", opts.NumUsers, opts.NumArticles)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("Warning: could not clear all existing data: %v", err)
		}
	}

	factory := NewFactory(db)

	admin, err := createStaffUser(factory, "admin@tintuc.local", models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	editor, err := createStaffUser(factory, "editor@tintuc.local", models.RoleEditor)
	if err != nil {
		return fmt.Errorf("create editor: %w", err)
	}

	users := []*models.User{admin, editor}
	for i := 2; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	articles := make([]*models.Article, 0, opts.NumArticles)
	for i := 0; i < opts.NumArticles; i++ {
		author := users[rand.Intn(len(users))]
		article := factory.BuildArticle(author, func(a *models.Article) {
			// Roughly one in five stays unpublished.
			switch rand.Intn(10) {
			case 0:
				a.Status = models.StatusDraft
				a.PublishedAt = nil
			case 1:
				a.Status = models.StatusArchived
			}
		})
		articles = append(articles, article)
	}
	if err := factory.CreateArticlesBatch(articles); err != nil {
		return fmt.Errorf("create articles: %w", err)
	}
	log.Printf("created %d articles", len(articles))

	log.Println("Seeding complete. Staff login: admin@tintuc.local / Password123")
	return nil
}

func createStaffUser(factory *Factory, email, role string) (*models.User, error) {
	return factory.CreateUser(func(u *models.User) {
		u.Email = email
		u.Role = role
	})
}

// EnsureAdmin creates the default admin account when no admin exists yet.
// Used by bootstrap so a fresh database is immediately usable.
func EnsureAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("ChangeMe123")
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:       "Administrator",
		Email:      "admin@tintuc.local",
		Password:   hash,
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.Println("created default admin account admin@tintuc.local (change the password)")
	return nil
}

func clearData(db *gorm.DB) error {
	// Articles first, users carry the FK target.
	if err := db.Unscoped().Where("1 = 1").Delete(&models.Article{}).Error; err != nil {
		return err
	}
	return db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error
}
