package server

import (
	"context"
	"strings"

	"tintuc/internal/auth"
	"tintuc/internal/middleware"
	"tintuc/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns middleware that validates the bearer access token and
// loads the account into locals. Token holders whose account has since been
// deleted are rejected.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.tokens.Verify(tokenString, auth.TokenAccess)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}

		setCurrentUser(c, user)
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403. Must be placed after
// AuthRequired so the current user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// OptionalAuth loads the current user when a valid bearer token is present
// and proceeds anonymously otherwise. It never rejects.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		claims, err := s.tokens.Verify(tokenString, auth.TokenAccess)
		if err != nil {
			return c.Next()
		}
		userID, err := claims.UserID()
		if err != nil {
			return c.Next()
		}
		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return c.Next()
		}
		setCurrentUser(c, user)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals("user", user)
	c.Locals("userID", user.ID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
	c.SetUserContext(ctx)
}

// currentUser returns the authenticated user, or nil on anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
