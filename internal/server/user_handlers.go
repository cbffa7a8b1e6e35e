package server

import (
	"tintuc/internal/models"
	"tintuc/internal/pagination"
	"tintuc/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users (admin only)
func (s *Server) GetUsers(c *fiber.Ctx) error {
	params := pagination.Parse(c, "created_at", "created_at", "name", "email", "last_login")
	role := c.Query("role")

	result, err := s.userService.ListUsers(c.Context(), params, role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, result)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// GetUserProfile handles GET /api/users/:id/profile
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	limit := c.QueryInt("articleLimit", 10)

	user, err := s.userService.GetProfile(c.Context(), id, limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// UpdateUser handles PATCH /api/users/:id. Users may edit themselves; only
// admins may edit others.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	caller := currentUser(c)
	if caller.ID != id && !caller.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only edit your own account"))
	}

	var req service.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.UserID = id
	req.Caller = caller

	user, err := s.userService.UpdateUser(c.Context(), req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id (admin only)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}
