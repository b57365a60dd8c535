package dto

import (
	"time"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	FullName        *string `json:"full_name"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// TokenResponse is one signed token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User         *domain.User   `json:"user"`
	AccessToken  TokenResponse  `json:"access_token"`
	RefreshToken *TokenResponse `json:"refresh_token,omitempty"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// UserPageResponse wraps a page of users.
type UserPageResponse struct {
	Users    []domain.User `json:"users"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
