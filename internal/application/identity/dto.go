package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/auth"
)

// LoginInput contains the credentials for a login
type LoginInput struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,max=72"`
}

// RefreshTokenInput carries the refresh token to rotate
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	AccessClaims *auth.Claims `json:"-"`
	RefreshToken string       `json:"refresh_token"`
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResult is a freshly issued token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult contains the tokens and the user that logged in
type LoginResult struct {
	TokenResult
	User UserInfo `json:"user"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID          uuid.UUID     `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DisplayName string        `json:"display_name"`
	Role        identity.Role `json:"role"`
	CustomerID  *uuid.UUID    `json:"customer_id,omitempty"`
	StatusCode  int           `json:"status_code"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
}

// ToUserInfo converts a domain user to its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.FullName(),
		Role:        u.Role,
		CustomerID:  u.CustomerID,
		StatusCode:  int(u.StatusCode),
		LastLoginAt: u.LastLoginAt,
	}
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
