package metadata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to REDIS_ADDR; the test is skipped when Redis is
// not configured or not reachable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRepository_Contract(t *testing.T) {
	client := setupTestRedis(t)
	prefix := "bookshelf-test:" + uuid.NewString() + ":"

	exerciseRepository(t, NewRedisRepository(client, prefix))
}

func TestRedisRepository_PrefixIsolation(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewRedisRepository(client, "bookshelf-test:"+uuid.NewString()+":")
	b := NewRedisRepository(client, "bookshelf-test:"+uuid.NewString()+":")
	t.Cleanup(func() {
		_ = a.Clear(ctx)
		_ = b.Clear(ctx)
	})

	require.NoError(t, a.Set(ctx, "k", []byte("from-a")))

	v, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, b.Clear(ctx))
	v, err = a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-a"), v)
}

func TestNewRedisRepository_DefaultPrefix(t *testing.T) {
	r := NewRedisRepository(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	assert.Equal(t, "bookshelf:", r.prefix)
}
