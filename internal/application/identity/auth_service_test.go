package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

const testPassword = "Secret123"

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
}

func newAuthFixture() *authFixture {
	users := new(MockUserRepository)
	jwt := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-at-least-32-chars",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "wms-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return &authFixture{
		svc:       NewAuthService(users, jwt, blacklist, zap.NewNop()),
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
	}
}

func newClientUser(t *testing.T) *identity.User {
	t.Helper()
	customerID := uuid.New()
	user, err := identity.NewUser("client.user", testPassword, identity.RoleClient, &customerID)
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens carrying role and customer", func(t *testing.T) {
		f := newAuthFixture()
		user := newClientUser(t)
		f.users.On("FindByUsername", ctx, "client.user").Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{Username: "client.user", Password: testPassword})
		require.NoError(t, err)

		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleClient, claims.Role)
		assert.Equal(t, user.CustomerID.String(), claims.CustomerID)
		f.users.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Username: "ghost", Password: testPassword})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("wrong password does not touch the user", func(t *testing.T) {
		f := newAuthFixture()
		user := newClientUser(t)
		f.users.On("FindByUsername", ctx, "client.user").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Username: "client.user", Password: "Wrong1234"})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newAuthFixture()
		user := newClientUser(t)
		user.Deactivate()
		f.users.On("FindByUsername", ctx, "client.user").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Username: "client.user", Password: testPassword})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ACCOUNT_INACTIVE", de.Code)
	})

	t.Run("repository failure is returned as is", func(t *testing.T) {
		f := newAuthFixture()
		boom := errors.New("db down")
		f.users.On("FindByUsername", ctx, "client.user").Return(nil, boom)

		_, err := f.svc.Login(ctx, LoginInput{Username: "client.user", Password: testPassword})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newClientUser(t)
	f.users.On("FindByUsername", ctx, "client.user").Return(user, nil)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil)

	login, err := f.svc.Login(ctx, LoginInput{Username: "client.user", Password: testPassword})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	claims, err := f.jwt.ValidateRefreshToken(refreshed.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.RefreshCount)

	_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_REVOKED", de.Code)
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "not-a-token"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_INVALID", de.Code)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newClientUser(t)

	pair, err := f.jwt.GenerateTokenPair(tokenInput(user))
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, LogoutInput{AccessClaims: access, RefreshToken: pair.RefreshToken}))

	revoked, err := f.blacklist.IsBlacklisted(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = f.blacklist.IsBlacklisted(ctx, refresh.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a wrong current password", func(t *testing.T) {
		f := newAuthFixture()
		user := newClientUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.svc.ChangePassword(ctx, identity.Principal{UserID: user.ID}, ChangePasswordInput{
			OldPassword: "Nope12345",
			NewPassword: "Brand9New",
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PASSWORD", de.Code)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("revokes earlier tokens and issues new ones", func(t *testing.T) {
		f := newAuthFixture()
		user := newClientUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		result, err := f.svc.ChangePassword(ctx, identity.Principal{UserID: user.ID}, ChangePasswordInput{
			OldPassword: testPassword,
			NewPassword: "Brand9New",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.True(t, user.VerifyPassword("Brand9New"))

		invalidated, err := f.blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, invalidated)
	})
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newClientUser(t)
	require.NoError(t, user.UpdateProfile("c@example.com", "Casey", "Lee"))
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	info, err := f.svc.GetCurrentUser(ctx, identity.Principal{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Casey Lee", info.DisplayName)
	assert.Equal(t, identity.RoleClient, info.Role)
	assert.Equal(t, 1, info.StatusCode)
}
