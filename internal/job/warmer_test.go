package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classichub-service/pkg/locker"
)

type runRecorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *runRecorder) RecordWarmerRun(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, result)
}

func (r *runRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.runs...)
}

func countingTarget(n *atomic.Int32, err error) Target {
	return TargetFunc(func(context.Context) error {
		n.Add(1)

		return err
	})
}

var testConfig = WarmerConfig{Interval: time.Hour, Timeout: time.Second}

func TestCacheWarmer_RunOnce_HoldsLockAfterSuccess(t *testing.T) {
	var perf, artists atomic.Int32
	rec := &runRecorder{}
	w := NewCacheWarmer(map[string]Target{
		"performances": countingTarget(&perf, nil),
		"artists":      countingTarget(&artists, nil),
	}, testConfig, locker.NewLocal(), rec, zap.NewNop())

	results := w.RunOnce(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "artists", results[0].Name)
	assert.NoError(t, results[1].Error)

	assert.Nil(t, w.RunOnce(context.Background()), "cooldown keeps the lock")
	assert.Equal(t, int32(1), perf.Load())
	assert.Equal(t, []string{RunOK, RunSkipped}, rec.all())
}

func TestCacheWarmer_RunOnce_ReleasesLockAfterFailure(t *testing.T) {
	var ok, bad atomic.Int32
	rec := &runRecorder{}
	w := NewCacheWarmer(map[string]Target{
		"news":   countingTarget(&bad, errors.New("naver down")),
		"videos": countingTarget(&ok, nil),
	}, testConfig, locker.NewLocal(), rec, zap.NewNop())

	results := w.RunOnce(context.Background())
	require.Len(t, results, 2)
	assert.Error(t, results[0].Error)

	w.RunOnce(context.Background())
	assert.Equal(t, int32(2), bad.Load(), "released lock allows an immediate retry")
	assert.Equal(t, []string{RunPartial, RunPartial}, rec.all())
}

func TestCacheWarmer_RunOnce_AllFailed(t *testing.T) {
	var n atomic.Int32
	rec := &runRecorder{}
	w := NewCacheWarmer(map[string]Target{
		"news": countingTarget(&n, errors.New("down")),
	}, testConfig, nil, rec, zap.NewNop())

	w.RunOnce(context.Background())

	assert.Equal(t, []string{RunError}, rec.all())
}

func TestCacheWarmer_RunOnce_TimeoutReachesTargets(t *testing.T) {
	w := NewCacheWarmer(map[string]Target{
		"slow": TargetFunc(func(ctx context.Context) error {
			<-ctx.Done()

			return ctx.Err()
		}),
	}, WarmerConfig{Interval: time.Hour, Timeout: 20 * time.Millisecond}, nil, nil, zap.NewNop())

	results := w.RunOnce(context.Background())

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, context.DeadlineExceeded)
}

func TestCacheWarmer_OneInstanceWarms(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var n atomic.Int32
	target := map[string]Target{"performances": countingTarget(&n, nil)}

	first := NewCacheWarmer(target, testConfig, locker.NewRedisLocker(client, "hub:", nil), nil, zap.NewNop())
	second := NewCacheWarmer(target, testConfig, locker.NewRedisLocker(client, "hub:", nil), nil, zap.NewNop())

	first.RunOnce(context.Background())
	second.RunOnce(context.Background())

	assert.Equal(t, int32(1), n.Load())
}

func TestCacheWarmer_StartStop(t *testing.T) {
	var n atomic.Int32
	w := NewCacheWarmer(map[string]Target{
		"performances": countingTarget(&n, nil),
	}, WarmerConfig{Interval: 10 * time.Millisecond, Timeout: time.Second}, nil, nil, zap.NewNop())

	w.Start(true)
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}
