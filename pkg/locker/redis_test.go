package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "warmer"

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisLocker_AcquireAndContend(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	first := NewRedisLocker(client, "hub:lock:", zap.NewNop())
	second := NewRedisLocker(client, "hub:lock:", zap.NewNop())

	acquired, err := first.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists("hub:lock:"+testLockKey), "key is namespaced")

	acquired, err = second.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "second holder is refused without an error")
}

func TestRedisLocker_PrefixSeparatesDeployments(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	a := NewRedisLocker(client, "staging:", nil)
	b := NewRedisLocker(client, "production:", nil)

	okA, err := a.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	okB, err := b.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)

	assert.True(t, okA)
	assert.True(t, okB)
}

func TestRedisLocker_Release(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	first := NewRedisLocker(client, "", zap.NewNop())
	second := NewRedisLocker(client, "", zap.NewNop())

	_, err := first.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, second.Release(ctx, testLockKey), "releasing a foreign lease is a no-op")
	acquired, err := second.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, first.Release(ctx, testLockKey))
	acquired, err = second.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	first := NewRedisLocker(client, "", zap.NewNop())
	second := NewRedisLocker(client, "", zap.NewNop())

	_, err := first.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	acquired, err := second.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_ConcurrentAcquisition(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := NewRedisLocker(client, "", zap.NewNop())
			if ok, err := l.Acquire(ctx, testLockKey, 5*time.Second); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestRedisLocker_ConnectionFailure(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	l := NewRedisLocker(client, "", zap.NewNop())
	acquired, err := l.Acquire(context.Background(), testLockKey, time.Second)

	assert.Error(t, err)
	assert.False(t, acquired)
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	l := NewLocal()
	l.now = func() time.Time { return now }

	ok, err := l.Acquire(ctx, testLockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, ok, "expired lease can be taken again")

	require.NoError(t, l.Release(ctx, testLockKey))
	ok, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, ok)
}
