package dto

import (
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// UserResponse is the public view of a user. Password hash and provider ID are never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokensResponse carries an issued token pair.
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string         `json:"message"`
	User    UserResponse   `json:"user"`
	Tokens  TokensResponse `json:"tokens"`
}

// GoogleAuthResponse is returned by federated login.
type GoogleAuthResponse struct {
	Message   string         `json:"message"`
	User      UserResponse   `json:"user"`
	Tokens    TokensResponse `json:"tokens"`
	IsNewUser bool           `json:"is_new_user"`
}

// RefreshResponse is returned by a successful token refresh.
type RefreshResponse struct {
	Message string         `json:"message"`
	Tokens  TokensResponse `json:"tokens"`
}

// MeResponse is returned by the current-user endpoint.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// NewUserResponse converts a user entity to its public view.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewTokensResponse converts a token pair to its wire form.
func NewTokensResponse(p entity.TokenPair) TokensResponse {
	return TokensResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
