package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/benjaminschubert/fetchcache/internal/kvstore"
)

// startRedis starts a Redis container for the test, skipping the test when
// no container runtime is available.
func startRedis(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Integration test")
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
		t.Skipf("unable to start a redis container: %v", err)
	}
	t.Cleanup(func() { require.NoError(t, container.Terminate(context.Background())) })

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)
	return endpoint
}

func newRedis(t *testing.T, prefix string) *kvstore.Redis {
	t.Helper()

	endpoint := startRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := kvstore.NewRedis(ctx, endpoint, prefix)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestRedisUsesPrefix(t *testing.T) {
	t.Parallel()

	endpoint := startRedis(t)
	ctx := context.Background()

	opts, err := redis.ParseURL(endpoint)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	store := kvstore.NewRedisFromClient(client, "prefix:")
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.Set(ctx, "key", "value", time.Hour))

	value, err := client.Get(ctx, "prefix:key").Result()
	require.NoError(t, err)
	require.Equal(t, "value", value)

	ttl, err := client.TTL(ctx, "prefix:key").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 59*time.Minute)
}

func TestRedisRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := kvstore.NewRedis(context.Background(), "http://localhost", "")
	require.ErrorContains(t, err, "invalid redis url")
}
