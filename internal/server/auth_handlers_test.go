package server

import (
	"context"
	"net/http"
	"testing"

	"tintuc/internal/auth"
	"tintuc/internal/featureflags"
	"tintuc/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedUser(t *testing.T, id uint, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:         id,
		Name:       "Người đọc",
		Email:      email,
		Password:   hash,
		Role:       models.RoleUser,
		IsVerified: true,
	}
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var created *models.User
		users := &userRepoStub{
			create: func(ctx context.Context, user *models.User) error {
				user.ID = 11
				created = user
				return nil
			},
		}
		_, app := newTestServer(t, users, &articleRepoStub{})

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bạn đọc mới",
			"email":    "moi@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, true, body["success"])
		require.NotNil(t, created)
		assert.Equal(t, models.RoleUser, created.Role)
		assert.False(t, created.IsVerified)
		assert.NotEmpty(t, created.Password)
		assert.NotEqual(t, "Password123", created.Password, "password stored hashed")
		data := body["data"].(map[string]any)
		assert.Nil(t, data["password"], "password never serialized")
	})

	t.Run("weak password rejected", func(t *testing.T) {
		_, app := newTestServer(t, &userRepoStub{}, &articleRepoStub{})

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bạn đọc",
			"email":    "moi@example.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, false, body["success"])
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		users := &userRepoStub{
			getByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return &models.User{ID: 1, Email: email}, nil
			},
		}
		_, app := newTestServer(t, users, &articleRepoStub{})

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bạn đọc",
			"email":    "daco@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Email already registered", body["message"])
	})

	t.Run("registration flag off", func(t *testing.T) {
		s, app := newTestServer(t, &userRepoStub{}, &articleRepoStub{})
		s.featureFlags = featureflags.NewManager("registration=off")

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bạn đọc",
			"email":    "moi@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Registration is currently disabled", body["message"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	account := verifiedUser(t, 3, "doc@example.com", "Password123")
	users := &userRepoStub{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) {
			if email == account.Email {
				return account, nil
			}
			return nil, nil
		},
	}
	_, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("success returns tokens", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "doc@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEmpty(t, data["refreshToken"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "doc@example.com", user["email"])
		assert.NotNil(t, account.LastLogin, "login stamps last_login")
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "doc@example.com",
			"password": "WrongPass1",
		})
		require.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid email or password", body["message"])
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "khong@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid email or password", body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "doc@example.com",
		})
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unverified account gets the same message", func(t *testing.T) {
		unverified := verifiedUser(t, 4, "chua@example.com", "Password123")
		unverified.IsVerified = false
		users := &userRepoStub{
			getByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return unverified, nil
			},
		}
		_, app := newTestServer(t, users, &articleRepoStub{})

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "chua@example.com",
			"password": "Password123",
		})
		require.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid email or password", body["message"],
			"a distinct message would confirm the account exists")
	})
}

func TestRefreshEndpoint(t *testing.T) {
	account := verifiedUser(t, 5, "doc@example.com", "Password123")
	users := &userRepoStub{
		getByID: func(ctx context.Context, id uint) (*models.User, error) {
			if id == account.ID {
				return account, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
	}
	s, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		refresh, err := s.tokens.Issue(account, auth.TokenRefresh)
		require.NoError(t, err)

		status, body := doRequest(t, app, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
			"refreshToken": refresh,
		})
		require.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEmpty(t, data["refreshToken"])
	})

	t.Run("access token rejected", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
			"refreshToken": accessTokenFor(t, s, account),
		})
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("missing token", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, status)
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	token := "abc-123"
	pending := &models.User{ID: 6, Email: "chua@example.com", VerificationToken: &token}
	users := &userRepoStub{
		getByVerificationToken: func(ctx context.Context, got string) (*models.User, error) {
			if got == token {
				return pending, nil
			}
			return nil, nil
		},
	}
	_, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("valid token verifies", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodGet, "/api/auth/verify-email/abc-123", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.True(t, pending.IsVerified)
		assert.Nil(t, pending.VerificationToken, "token consumed")
	})

	t.Run("unknown token", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/api/auth/verify-email/khac", "", nil)
		require.Equal(t, http.StatusBadRequest, status)
	})
}

func TestForgotPasswordEndpoint(t *testing.T) {
	account := verifiedUser(t, 8, "doc@example.com", "Password123")
	users := &userRepoStub{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) {
			if email == account.Email {
				return account, nil
			}
			return nil, nil
		},
	}
	_, app := newTestServer(t, users, &articleRepoStub{})

	t.Run("known email stamps a reset token", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
			"email": "doc@example.com",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.NotNil(t, account.ResetPasswordToken)
		assert.NotNil(t, account.ResetPasswordExpires)
	})

	t.Run("unknown email gets the identical response", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
			"email": "khong@example.com",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
	})
}
