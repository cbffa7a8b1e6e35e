// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"tintuc/internal/cache"
	"tintuc/internal/models"
	"tintuc/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	GetProfile(ctx context.Context, id uint, articleLimit int) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// cachedUser is the Redis projection of a User. The API model hides the
// credential columns behind json:"-", so caching a User through json.Marshal
// would drop them and a cache hit would hand back an account with an empty
// password hash. This type carries them under explicit keys instead.
type cachedUser struct {
	models.User
	Password             string     `json:"password"`
	VerificationToken    *string    `json:"verification_token"`
	ResetPasswordToken   *string    `json:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"reset_password_expires"`
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		User:                 *u,
		Password:             u.Password,
		VerificationToken:    u.VerificationToken,
		ResetPasswordToken:   u.ResetPasswordToken,
		ResetPasswordExpires: u.ResetPasswordExpires,
	}
}

func (c *cachedUser) user() *models.User {
	u := c.User
	u.Password = c.Password
	u.VerificationToken = c.VerificationToken
	u.ResetPasswordToken = c.ResetPasswordToken
	u.ResetPasswordExpires = c.ResetPasswordExpires
	return &u
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var entry cachedUser
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &entry, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		entry = newCachedUser(&user)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return entry.user(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("reset_password_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uint, articleLimit int) (*models.User, error) {
	var user models.User
	if articleLimit <= 0 {
		articleLimit = 10
	}
	if articleLimit > 100 {
		articleLimit = 100
	}

	if err := r.db.WithContext(ctx).
		Preload("Articles", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "status", "published_at", "author_id").
				Where("status = ?", models.StatusPublished).
				Order("published_at DESC").
				Limit(articleLimit)
		}).
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.TranslateDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	// Articles ride along on profile reads; never write them back from here.
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return models.TranslateDBError(err, "update user")
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	// author_id on articles is ON DELETE SET NULL, so this does not cascade.
	// A residual FK violation from the driver still maps to a 400.
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.TranslateDBError(err, "delete user")
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	q := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	q = params.ApplySearch(q, "name", "email")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	q = params.ApplyOrder(q)
	q = params.ApplyLimits(q)
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
