package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_SweepsExpiredEntriesOnWrite(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	blacklist := NewInMemoryTokenBlacklist()
	blacklist.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		require.NoError(t, blacklist.AddToBlacklist(ctx, fmt.Sprintf("jti-%d", i), time.Minute))
	}
	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-1", time.Minute))
	assert.Equal(t, 101, blacklist.Len())

	// nothing is read back, the next write after expiry purges everything
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, blacklist.AddToBlacklist(ctx, "fresh", time.Hour))
	assert.Equal(t, 1, blacklist.Len())

	revoked, err := blacklist.IsBlacklisted(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestInMemoryTokenBlacklist_SweepIsThrottled(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	blacklist := NewInMemoryTokenBlacklist()
	blacklist.now = func() time.Time { return clock }

	require.NoError(t, blacklist.AddToBlacklist(ctx, "short", time.Second))
	clock = clock.Add(2 * time.Second)
	require.NoError(t, blacklist.AddToBlacklist(ctx, "other", time.Hour))
	assert.Equal(t, 2, blacklist.Len(), "second write falls inside the sweep interval")

	clock = clock.Add(blacklistSweepInterval)
	require.NoError(t, blacklist.AddToBlacklist(ctx, "third", time.Hour))
	assert.Equal(t, 2, blacklist.Len())
}
