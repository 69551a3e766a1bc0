package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedRedis     testcontainers.Container
	sharedRedisMu   sync.Mutex
	sharedRedisAddr string
)

// NewTestRedis returns a client on the shared Redis container. Every test
// gets its own logical database index so keys never collide.
func NewTestRedis(t *testing.T, db int) *redis.Client {
	t.Helper()
	skipShort(t)

	sharedRedisMu.Lock()
	defer sharedRedisMu.Unlock()

	ctx := context.Background()
	if sharedRedis == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		require.NoError(t, err, "Failed to start Redis container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "6379")
		require.NoError(t, err)

		sharedRedis = container
		sharedRedisAddr = fmt.Sprintf("%s:%s", host, port.Port())
	}

	client := redis.NewClient(&redis.Options{Addr: sharedRedisAddr, DB: db})
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}
