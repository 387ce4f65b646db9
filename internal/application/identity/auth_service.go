package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles login, token rotation, logout and password changes
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Login verifies the credentials and issues a token pair. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("username", input.Username))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", user.Username))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", user.Username))
		return nil, shared.NewCatalogError("ACCOUNT_INACTIVE")
	}

	pair, err := s.jwt.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewCatalogError("INTERNAL_ERROR")
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		// the login itself succeeded
		s.logger.Error("Failed to record login time", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return &LoginResult{TokenResult: toTokenResult(pair), User: ToUserInfo(user)}, nil
}

// RefreshToken rotates a refresh token. The used refresh token is revoked so
// it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*TokenResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewCatalogError("ACCOUNT_INACTIVE")
	}

	pair, err := s.jwt.RefreshTokenPair(claims, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh rejected", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the presented access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessClaims != nil {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessClaims.ID, input.AccessClaims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwt.ValidateRefreshToken(input.RefreshToken)
		if err == nil {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	if input.AccessClaims != nil {
		s.logger.Info("User logged out", zap.String("user_id", input.AccessClaims.UserID))
	}
	return nil
}

// GetCurrentUser returns the authenticated user as stored
func (s *AuthService) GetCurrentUser(ctx context.Context, principal identity.Principal) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// ChangePassword replaces the password and revokes every token issued before
// the change. A new token pair is returned so the caller stays logged in.
func (s *AuthService) ChangePassword(ctx context.Context, principal identity.Principal, input ChangePasswordInput) (*TokenResult, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwt.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
		return nil, shared.NewCatalogError("INTERNAL_ERROR")
	}
	pair, err := s.jwt.GenerateTokenPair(tokenInput(user))
	if err != nil {
		return nil, shared.NewCatalogError("INTERNAL_ERROR")
	}

	s.logger.Info("User password changed", zap.String("user_id", user.ID.String()))
	result := toTokenResult(pair)
	return &result, nil
}

// checkRevoked rejects tokens revoked individually or by a password change
func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:     u.ID,
		Username:   u.Username,
		Role:       u.Role,
		CustomerID: u.CustomerID,
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
