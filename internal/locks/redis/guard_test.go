package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"ms-booking/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestGuardAcquireAndRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	g := NewGuard(client, time.Second, 50*time.Millisecond, logger.NewNop())
	ctx := context.Background()

	release, err := g.Acquire(ctx, "show-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(Key("show-1")))

	_, err = g.Acquire(ctx, "show-1")
	assert.ErrorIs(t, err, ErrGuardTimeout)

	other, err := g.Acquire(ctx, "show-2")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists(Key("show-1")))

	release, err = g.Acquire(ctx, "show-1")
	require.NoError(t, err)
	release()
}

func TestGuardReleaseKeepsForeignOwner(t *testing.T) {
	client, mr := setupTestRedis(t)
	g := NewGuard(client, time.Second, 50*time.Millisecond, logger.NewNop())

	release, err := g.Acquire(context.Background(), "show-1")
	require.NoError(t, err)

	// our hold expired and another instance took over
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(Key("show-1"), "someone-else"))

	release()
	val, err := mr.Get(Key("show-1"))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestGuardSerializesWaiters(t *testing.T) {
	client, _ := setupTestRedis(t)
	g := NewGuard(client, 5*time.Second, 2*time.Second, logger.NewNop())
	g.Retry = 2 * time.Millisecond

	var mu sync.Mutex
	inside := 0
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background(), "show-1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			assert.Equal(t, 1, inside)
			mu.Unlock()
			time.Sleep(3 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
}

func TestGuardRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	g := NewGuard(client, time.Second, 100*time.Millisecond, logger.NewNop())
	release, err := g.Acquire(ctx, "show-1")
	require.NoError(t, err)
	_, err = g.Acquire(ctx, "show-1")
	assert.ErrorIs(t, err, ErrGuardTimeout)
	release()

	n, err := client.Exists(ctx, Key("show-1")).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
