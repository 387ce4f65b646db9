package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	customerID := uuid.New()

	t.Run("creates client user bound to customer", func(t *testing.T) {
		user, err := NewUser("  Alice ", "Password123", RoleClient, &customerID)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, RoleClient, user.Role)
		assert.Equal(t, customerID, *user.CustomerID)
		assert.Equal(t, shared.StatusActive, user.StatusCode)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Password123"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
		assert.Equal(t, customerID, events[0].CustomerID())
	})

	t.Run("creates admin without customer", func(t *testing.T) {
		user, err := NewUser("admin", "Password123", RoleAdmin, nil)

		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.Nil(t, user.CustomerID)
	})

	t.Run("client requires customer", func(t *testing.T) {
		_, err := NewUser("bob", "Password123", RoleClient, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must belong to a customer")
	})

	t.Run("admin rejects customer", func(t *testing.T) {
		_, err := NewUser("root", "Password123", RoleAdmin, &customerID)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := NewUser("carol", "Password123", Role("GUEST"), nil)
		assert.Error(t, err)
	})

	t.Run("short username", func(t *testing.T) {
		_, err := NewUser("ab", "Password123", RoleAdmin, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := NewUser("dave", "password", RoleAdmin, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "one letter and one number")
	})
}

func TestUser_Passwords(t *testing.T) {
	user, err := NewUser("erin", "Password123", RoleAdmin, nil)
	require.NoError(t, err)
	user.ClearDomainEvents()

	assert.False(t, user.VerifyPassword("wrong"))

	err = user.ChangePassword("wrong", "NewPass456")
	assert.Error(t, err)

	err = user.ChangePassword("Password123", "Password123")
	assert.Error(t, err)

	require.NoError(t, user.ChangePassword("Password123", "NewPass456"))
	assert.True(t, user.VerifyPassword("NewPass456"))
	assert.False(t, user.VerifyPassword("Password123"))

	events := user.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeUserPasswordChanged, events[0].EventType())
}

func TestUser_StatusAndProfile(t *testing.T) {
	user, err := NewUser("frank", "Password123", RoleAdmin, nil)
	require.NoError(t, err)

	assert.True(t, user.CanLogin())
	user.Deactivate()
	assert.Equal(t, shared.StatusInactive, user.StatusCode)
	assert.False(t, user.CanLogin())
	user.Activate()
	assert.True(t, user.CanLogin())

	assert.Equal(t, "frank", user.FullName())
	require.NoError(t, user.UpdateProfile("frank@example.com", "Frank", "Ocean"))
	assert.Equal(t, "Frank Ocean", user.FullName())

	assert.Error(t, user.UpdateProfile("not-an-email", "", ""))

	assert.Nil(t, user.LastLoginAt)
	user.RecordLogin()
	assert.NotNil(t, user.LastLoginAt)
}

func TestPrincipal(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	admin := Principal{UserID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.CanAccessCustomer(other))
	assert.Nil(t, admin.ScopeCustomerID())
	assert.NotNil(t, admin.ActorID())

	client := Principal{UserID: uuid.New(), Role: RoleClient, CustomerID: &own}
	assert.True(t, client.CanAccessCustomer(own))
	assert.False(t, client.CanAccessCustomer(other))
	assert.Equal(t, own, *client.ScopeCustomerID())

	orphan := Principal{Role: RoleClient}
	assert.False(t, orphan.CanAccessCustomer(own))
	assert.Equal(t, uuid.Nil, *orphan.ScopeCustomerID())
	assert.Nil(t, orphan.ActorID())
}

func TestPrincipal_ResolveCustomerFilter(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	admin := Principal{Role: RoleAdmin}
	got, err := admin.ResolveCustomerFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = admin.ResolveCustomerFilter(&other)
	require.NoError(t, err)
	assert.Equal(t, other, *got)

	client := Principal{Role: RoleClient, CustomerID: &own}
	got, err = client.ResolveCustomerFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, own, *got)
	got, err = client.ResolveCustomerFilter(&own)
	require.NoError(t, err)
	assert.Equal(t, own, *got)

	_, err = client.ResolveCustomerFilter(&other)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
