package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wms/backend/internal/infrastructure/config"
)

func TestOrderSequenceKey(t *testing.T) {
	assert.Equal(t, "order:seq:20261018", orderSequenceKey("20261018-"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}

func startRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisOrderSequence_SeedsAndIncrements(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	seeded := 0
	seq := NewRedisOrderSequence(client, func(_ context.Context, prefix string) (int64, error) {
		seeded++
		assert.Equal(t, "20261018-", prefix)
		return 41, nil
	}, nil)

	first, err := seq.Next(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "20261018-0042", first)

	second, err := seq.Next(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "20261018-0043", second)
	assert.Equal(t, 1, seeded)

	ttl, err := client.TTL(ctx, "order:seq:20261018").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 47*time.Hour)
}

func TestRedisOrderSequence_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	seq := NewRedisOrderSequence(client, func(context.Context, string) (int64, error) { return 0, nil }, nil)

	const workers = 20
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := seq.Next(ctx, day)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers)
	for i := 1; i <= workers; i++ {
		assert.True(t, seen[fmt.Sprintf("20261019-%04d", i)])
	}
}
