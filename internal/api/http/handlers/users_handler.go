package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UsersHandler exposes account and authentication endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// SignUp handles POST /auth/signup.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	user, token, err := h.users.SignUp(c.UserContext(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewAuthResponse(user, token, "User registered successfully"),
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "name and password required")
	}

	user, token, err := h.users.Login(c.UserContext(), req.Name, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.NewAuthResponse(user, token, "Login successful. Welcome "+user.Name),
	})
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user not authenticated")
	}

	if err := h.users.Logout(c.UserContext(), principal.UserID, principal.RawToken); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"message": "Logged out successfully"}})
}

// ChangePassword handles POST /users/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user not authenticated")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "old and new password required")
	}

	if err := h.users.ChangePassword(c.UserContext(), principal.UserID, principal.RawToken, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "Password changed successfully. Please login again with your new password.",
	}})
}

// ChangeName handles PUT /users/name.
func (h *UsersHandler) ChangeName(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user not authenticated")
	}

	var req dto.ChangeNameRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.NewName == "" {
		return fiber.NewError(http.StatusBadRequest, "new_name required")
	}

	user, token, err := h.users.ChangeName(c.UserContext(), principal.UserID, req.NewName)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.NewAuthResponse(user, token, "Name changed successfully to: "+user.Name),
	})
}

// Delete handles DELETE /users/me.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user not authenticated")
	}

	if err := h.users.DeleteUser(c.UserContext(), principal.UserID, principal.RawToken); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"message": "User deleted successfully"}})
}

// Me handles GET /users/me, returning the authenticated caller's own record.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user not authenticated")
	}

	user, err := h.users.GetUserByID(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByID handles GET /users/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetRole handles GET /users/role/:name.
func (h *UsersHandler) GetRole(c *fiber.Ctx) error {
	role, err := h.users.GetUserRole(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role}})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, dto.NewUserResponse(user))
	}
	return c.JSON(fiber.Map{"data": out})
}
