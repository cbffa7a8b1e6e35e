package server

import (
	"tintuc/internal/featureflags"
	"tintuc/internal/models"
	"tintuc/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.FlagRegistration, 0) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Registration is currently disabled"))
	}

	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful, please verify your email",
		"data":    user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, pair, err := s.authService.Login(c.Context(), req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh-token
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	pair, err := s.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// VerifyEmail handles GET /api/auth/verify-email/:token
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")

	user, err := s.authService.VerifyEmail(c.Context(), token)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Email verified",
		"data":    user,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	if err := s.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Identical response whether or not the email exists.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.authService.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset",
	})
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, currentUser(c))
}
