package service

import (
	"context"
	"errors"
	"testing"

	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/repository"

	"github.com/stretchr/testify/require"
)

// userRepoStub implements repository.UserRepository with function fields so
// each test overrides only the calls it cares about.
type userRepoStub struct {
	getByIDFn                func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn             func(ctx context.Context, email string) (*models.User, error)
	getByVerificationTokenFn func(ctx context.Context, token string) (*models.User, error)
	getByResetTokenFn        func(ctx context.Context, token string) (*models.User, error)
	getProfileFn             func(ctx context.Context, id uint, articleLimit int) (*models.User, error)
	createFn                 func(ctx context.Context, user *models.User) error
	updateFn                 func(ctx context.Context, user *models.User) error
	deleteFn                 func(ctx context.Context, id uint) error
	listFn                   func(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getByVerificationTokenFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getByResetTokenFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getProfileFn: func(_ context.Context, id uint, _ int) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ pagination.Params, _ string) ([]models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return s.getByVerificationTokenFn(ctx, token)
}

func (s *userRepoStub) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.getByResetTokenFn(ctx, token)
}

func (s *userRepoStub) GetProfile(ctx context.Context, id uint, articleLimit int) (*models.User, error) {
	return s.getProfileFn(ctx, id, articleLimit)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func (s *userRepoStub) List(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error) {
	return s.listFn(ctx, params, role)
}

// articleRepoStub implements repository.ArticleRepository.
type articleRepoStub struct {
	getByIDFn        func(ctx context.Context, id uint) (*models.Article, error)
	createFn         func(ctx context.Context, article *models.Article) error
	updateFn         func(ctx context.Context, article *models.Article) error
	deleteFn         func(ctx context.Context, id uint) error
	listFn           func(ctx context.Context, params pagination.Params, filter repository.ArticleFilter) ([]models.Article, int64, error)
	incrementViewsFn func(ctx context.Context, id uint) error
	categoriesFn     func(ctx context.Context) ([]string, error)
	featuredFn       func(ctx context.Context, limit int) ([]models.Article, error)
	getBySourceURLFn func(ctx context.Context, sourceURL string) (*models.Article, error)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Article, error) {
			return nil, models.NewNotFoundError("Article", id)
		},
		createFn: func(_ context.Context, _ *models.Article) error { return nil },
		updateFn: func(_ context.Context, _ *models.Article) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ pagination.Params, _ repository.ArticleFilter) ([]models.Article, int64, error) {
			return nil, 0, nil
		},
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		categoriesFn:     func(_ context.Context) ([]string, error) { return nil, nil },
		featuredFn:       func(_ context.Context, _ int) ([]models.Article, error) { return nil, nil },
		getBySourceURLFn: func(_ context.Context, _ string) (*models.Article, error) { return nil, nil },
	}
}

func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	return s.createFn(ctx, article)
}

func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	return s.updateFn(ctx, article)
}

func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func (s *articleRepoStub) List(ctx context.Context, params pagination.Params, filter repository.ArticleFilter) ([]models.Article, int64, error) {
	return s.listFn(ctx, params, filter)
}

func (s *articleRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}

func (s *articleRepoStub) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

func (s *articleRepoStub) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	return s.featuredFn(ctx, limit)
}

func (s *articleRepoStub) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Article, error) {
	return s.getBySourceURLFn(ctx, sourceURL)
}

// mailerStub records outbound emails.
type mailerStub struct {
	verifications []string
	resets        []string
	failSend      bool
}

func (m *mailerStub) SendVerificationEmail(to, name, token string) error {
	if m.failSend {
		return errors.New("smtp unavailable")
	}
	m.verifications = append(m.verifications, to)
	return nil
}

func (m *mailerStub) SendPasswordResetEmail(to, name, token string) error {
	if m.failSend {
		return errors.New("smtp unavailable")
	}
	m.resets = append(m.resets, to)
	return nil
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 401, appErr.Status)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 403, appErr.Status)
}
