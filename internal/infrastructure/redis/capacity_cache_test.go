package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err := Ping(context.Background(), client); err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCapacityCache_GetRemaining(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewCapacityCache(client)
	ctx := context.Background()
	eventID := "test-event-123"

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		cache.Invalidate(ctx, eventID)
		_, err := cache.GetRemaining(ctx, eventID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("キャッシュにセットした値を取得できる", func(t *testing.T) {
		err := cache.SetRemaining(ctx, eventID, 25, 30*time.Second)
		require.NoError(t, err)

		remaining, err := cache.GetRemaining(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 25, remaining)
	})

	t.Run("キャッシュを無効化できる", func(t *testing.T) {
		err := cache.SetRemaining(ctx, eventID, 10, 30*time.Second)
		require.NoError(t, err)

		err = cache.Invalidate(ctx, eventID)
		require.NoError(t, err)

		_, err = cache.GetRemaining(ctx, eventID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestCapacityCache_TTL(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewCapacityCache(client)
	ctx := context.Background()
	eventID := "test-event-ttl"

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		err := cache.SetRemaining(ctx, eventID, 5, 100*time.Millisecond)
		require.NoError(t, err)

		remaining, err := cache.GetRemaining(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 5, remaining)

		time.Sleep(150 * time.Millisecond)
		_, err = cache.GetRemaining(ctx, eventID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
