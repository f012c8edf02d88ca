package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for password updates.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangeNameRequest payload for renames.
type ChangeNameRequest struct {
	NewName string `json:"new_name"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	ExpiresAt time.Time       `json:"expires_at"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Message   string          `json:"message,omitempty"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAuthResponse maps a user and their freshly issued token.
func NewAuthResponse(user *domain.User, token *domain.Token, message string) AuthResponse {
	return AuthResponse{
		Token:     token.Value,
		Type:      "Bearer",
		ExpiresAt: token.ExpiresAt,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Message:   message,
	}
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
