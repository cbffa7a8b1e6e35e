// Package service implements the business logic layer between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"time"

	"tintuc/internal/auth"
	"tintuc/internal/mailer"
	"tintuc/internal/models"
	"tintuc/internal/repository"
	"tintuc/internal/validation"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo         repository.UserRepository
	tokens           *auth.TokenManager
	mail             mailer.Mailer
	resetTokenExpiry time.Duration
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, mail mailer.Mailer, resetTokenExpiry time.Duration) *AuthService {
	if resetTokenExpiry <= 0 {
		resetTokenExpiry = time.Hour
	}
	return &AuthService{
		userRepo:         userRepo,
		tokens:           tokens,
		mail:             mail,
		resetTokenExpiry: resetTokenExpiry,
	}
}

// Register creates an unverified account and sends the verification email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	token := uuid.New().String()
	user := &models.User{
		Name:              in.Name,
		Email:             in.Email,
		Password:          hash,
		Role:              models.RoleUser,
		VerificationToken: &token,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mail.SendVerificationEmail(user.Email, user.Name, token); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// Login authenticates an account. Unknown email, wrong password, and an
// unverified account all return the same 401 so attackers learn nothing.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !auth.CheckPassword(in.Password, user.Password) {
		return nil, nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsVerified {
		// Same message as a bad credential; a distinct one would confirm
		// the account exists.
		return nil, nil, models.NewUnauthorizedError("Invalid email or password")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates an access+refresh pair from a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyEmail marks the account verified and consumes the token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.NewValidationError("Verification token is required")
	}
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("Invalid verification token")
	}

	user.IsVerified = true
	user.VerificationToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ForgotPassword stamps a reset token and emails the reset link. It reports
// success for unknown addresses too, so it cannot be used for enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token := uuid.New().String()
	expires := time.Now().Add(s.resetTokenExpiry)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.mail.SendPasswordResetEmail(user.Email, user.Name, token)
}

// ResetPassword consumes a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.NewValidationError("Reset token is required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.After(time.Now()) {
		return models.NewValidationError("Invalid or expired reset token")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	return s.userRepo.Update(ctx, user)
}
