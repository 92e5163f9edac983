package handlers

import (
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/pagination"
	"credit-app/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SetRoleRequest represents the role change body
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER VERIFIER ADMIN user verifier admin"`
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Produce json
// @Security CookieAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// GetUser handles getting a user by ID (Admin only)
// @Summary Get user by ID
// @Description Get a specific user by ID (Admin only)
// @Tags Users
// @Produce json
// @Security CookieAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get user")
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

// SetRole handles changing a user's role (Admin only)
// @Summary Change user role
// @Description Change another user's role (Admin only). Admins cannot change their own role.
// @Tags Users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to update user")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to update user")
	}

	var req SetRoleRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err, "Failed to update user")
	}

	user, err := h.userService.SetRole(c.UserContext(), identity, id, req.Role)
	if err != nil {
		return response.FromError(c, err, "Failed to update user")
	}

	return response.Success(c, "User role updated successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Description Delete a user and all of its loans (Admin only). Admins cannot delete themselves.
// @Tags Users
// @Produce json
// @Security CookieAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to delete user")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to delete user")
	}

	if err := h.userService.DeleteUser(c.UserContext(), identity, id); err != nil {
		return response.FromError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}
