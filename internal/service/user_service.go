package service

import (
	"context"

	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/repository"
	"tintuc/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateUserInput struct {
	UserID   uint
	Caller   *models.User
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
	ImageURL *string `json:"image_url"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, params pagination.Params, role string) (*pagination.Result[models.User], error) {
	if role != "" && !models.ValidRole(role) {
		return nil, models.NewValidationError("Invalid role filter")
	}
	users, total, err := s.userRepo.List(ctx, params, role)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(users, total, params)
	return &result, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the user with their recent published articles attached.
func (s *UserService) GetProfile(ctx context.Context, id uint, articleLimit int) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, id, articleLimit)
}

// UpdateUser applies a partial patch. Role changes require an admin caller.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *in.Email
	}
	if in.Role != nil {
		if in.Caller == nil || !in.Caller.IsAdmin() {
			return nil, models.NewForbiddenError("Only admins can change roles")
		}
		if !models.ValidRole(*in.Role) {
			return nil, models.NewValidationError("Invalid role")
		}
		user.Role = *in.Role
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Website != nil {
		user.Website = *in.Website
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.ImageURL != nil {
		user.ImageURL = *in.ImageURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	// Existence check first so a missing user is a 404, not a silent no-op.
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
