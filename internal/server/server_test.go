package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tintuc/internal/auth"
	"tintuc/internal/config"
	"tintuc/internal/featureflags"
	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/repository"
	"tintuc/internal/scraper"
	"tintuc/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// userRepoStub implements repository.UserRepository with overridable
// function fields. Unset methods report not found or succeed as a no-op.
type userRepoStub struct {
	getByID                func(ctx context.Context, id uint) (*models.User, error)
	getByEmail             func(ctx context.Context, email string) (*models.User, error)
	getByVerificationToken func(ctx context.Context, token string) (*models.User, error)
	getByResetToken        func(ctx context.Context, token string) (*models.User, error)
	getProfile             func(ctx context.Context, id uint, articleLimit int) (*models.User, error)
	create                 func(ctx context.Context, user *models.User) error
	update                 func(ctx context.Context, user *models.User) error
	delete                 func(ctx context.Context, id uint) error
	list                   func(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error)
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmail != nil {
		return s.getByEmail(ctx, email)
	}
	return nil, nil
}

func (s *userRepoStub) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if s.getByVerificationToken != nil {
		return s.getByVerificationToken(ctx, token)
	}
	return nil, nil
}

func (s *userRepoStub) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	if s.getByResetToken != nil {
		return s.getByResetToken(ctx, token)
	}
	return nil, nil
}

func (s *userRepoStub) GetProfile(ctx context.Context, id uint, articleLimit int) (*models.User, error) {
	if s.getProfile != nil {
		return s.getProfile(ctx, id, articleLimit)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.create != nil {
		return s.create(ctx, user)
	}
	user.ID = 1
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.update != nil {
		return s.update(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return nil
}

func (s *userRepoStub) List(ctx context.Context, params pagination.Params, role string) ([]models.User, int64, error) {
	if s.list != nil {
		return s.list(ctx, params, role)
	}
	return nil, 0, nil
}

// articleRepoStub mirrors userRepoStub for repository.ArticleRepository.
type articleRepoStub struct {
	getByID        func(ctx context.Context, id uint) (*models.Article, error)
	create         func(ctx context.Context, article *models.Article) error
	update         func(ctx context.Context, article *models.Article) error
	delete         func(ctx context.Context, id uint) error
	list           func(ctx context.Context, params pagination.Params, filter repository.ArticleFilter) ([]models.Article, int64, error)
	incrementViews func(ctx context.Context, id uint) error
	categories     func(ctx context.Context) ([]string, error)
	featured       func(ctx context.Context, limit int) ([]models.Article, error)
	getBySourceURL func(ctx context.Context, sourceURL string) (*models.Article, error)
}

var _ repository.ArticleRepository = (*articleRepoStub)(nil)

func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, models.NewNotFoundError("Article", id)
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	if s.create != nil {
		return s.create(ctx, article)
	}
	article.ID = 1
	return nil
}

func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	if s.update != nil {
		return s.update(ctx, article)
	}
	return nil
}

func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return nil
}

func (s *articleRepoStub) List(ctx context.Context, params pagination.Params, filter repository.ArticleFilter) ([]models.Article, int64, error) {
	if s.list != nil {
		return s.list(ctx, params, filter)
	}
	return nil, 0, nil
}

func (s *articleRepoStub) IncrementViews(ctx context.Context, id uint) error {
	if s.incrementViews != nil {
		return s.incrementViews(ctx, id)
	}
	return nil
}

func (s *articleRepoStub) Categories(ctx context.Context) ([]string, error) {
	if s.categories != nil {
		return s.categories(ctx)
	}
	return nil, nil
}

func (s *articleRepoStub) Featured(ctx context.Context, limit int) ([]models.Article, error) {
	if s.featured != nil {
		return s.featured(ctx, limit)
	}
	return nil, nil
}

func (s *articleRepoStub) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Article, error) {
	if s.getBySourceURL != nil {
		return s.getBySourceURL(ctx, sourceURL)
	}
	return nil, nil
}

type noopMailer struct{}

func (noopMailer) SendVerificationEmail(to, name, token string) error  { return nil }
func (noopMailer) SendPasswordResetEmail(to, name, token string) error { return nil }

const testJWTSecret = "test-secret-0123456789-0123456789-ok"

// newTestServer wires a Server around the stub repositories with real
// services, and returns a routed Fiber app ready for app.Test.
func newTestServer(t *testing.T, users *userRepoStub, articles *articleRepoStub) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{Env: "test", JWTSecret: testJWTSecret}
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Minute, time.Hour)

	s := &Server{
		config:         cfg,
		tokens:         tokens,
		featureFlags:   featureflags.NewManager("scraper=on,registration=on"),
		userRepo:       users,
		articleRepo:    articles,
		authService:    service.NewAuthService(users, tokens, noopMailer{}, time.Hour),
		userService:    service.NewUserService(users),
		articleService: service.NewArticleService(articles),
		newsCache:      scraper.NewNewsCache(scraper.NewFetcher(time.Second, ""), time.Minute, time.Second),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func accessTokenFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.tokens.Issue(user, auth.TokenAccess)
	require.NoError(t, err)
	return token
}

// doRequest performs a request against the app and decodes the JSON body
// into a generic map.
func doRequest(t *testing.T, app *fiber.App, method, target, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestServer(t, &userRepoStub{}, &articleRepoStub{})

	status, body := doRequest(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "up", body["status"])
}

func TestAuthRequired(t *testing.T) {
	account := &models.User{ID: 7, Name: "Người dùng", Email: "u@example.com", Role: models.RoleUser}
	users := &userRepoStub{
		getByID: func(ctx context.Context, id uint) (*models.User, error) {
			if id == account.ID {
				return account, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
	}
	s, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("missing token", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodGet, "/api/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, false, body["success"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/api/users/me", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("refresh token rejected on access routes", func(t *testing.T) {
		refresh, err := s.tokens.Issue(account, auth.TokenRefresh)
		require.NoError(t, err)
		status, _ := doRequest(t, app, http.MethodGet, "/api/users/me", refresh, nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("deleted account rejected", func(t *testing.T) {
		ghost := &models.User{ID: 99, Email: "gone@example.com", Role: models.RoleUser}
		status, body := doRequest(t, app, http.MethodGet, "/api/users/me", accessTokenFor(t, s, ghost), nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Account no longer exists", body["message"])
	})

	t.Run("valid token loads account", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodGet, "/api/users/me", accessTokenFor(t, s, account), nil)
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		require.Equal(t, "u@example.com", data["email"])
	})
}

func TestAdminRequired(t *testing.T) {
	regular := &models.User{ID: 1, Email: "user@example.com", Role: models.RoleUser}
	admin := &models.User{ID: 2, Email: "admin@example.com", Role: models.RoleAdmin}
	users := &userRepoStub{
		getByID: func(ctx context.Context, id uint) (*models.User, error) {
			switch id {
			case regular.ID:
				return regular, nil
			case admin.ID:
				return admin, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
	}
	s, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("regular user forbidden", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/api/users/", accessTokenFor(t, s, regular), nil)
		require.Equal(t, http.StatusForbidden, status)
	})

	t.Run("admin allowed", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/api/users/", accessTokenFor(t, s, admin), nil)
		require.Equal(t, http.StatusOK, status)
	})
}
