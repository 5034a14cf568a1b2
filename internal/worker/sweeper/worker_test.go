package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
)

type countingSweeper struct {
	calls atomic.Int64
	err   error
}

func (s *countingSweeper) SweepExpired(context.Context) (int64, error) {
	s.calls.Add(1)
	return 0, s.err
}

type stubGuard struct {
	ok  bool
	err error
}

func (g stubGuard) TryAcquire(context.Context) (bool, error) { return g.ok, g.err }

type fakeRedis struct {
	mu    sync.Mutex
	calls []setNXCall
	ok    bool
	err   error
}

type setNXCall struct {
	key   string
	value interface{}
	ttl   time.Duration
}

func (r *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	r.mu.Lock()
	r.calls = append(r.calls, setNXCall{key: key, value: value, ttl: expiration})
	r.mu.Unlock()
	return redis.NewBoolResult(r.ok, r.err)
}

func TestWorker_RunSweepsUntilCancelled(t *testing.T) {
	s := &countingSweeper{}
	w := NewWorker(s, nil, 5*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorker_RunOnce(t *testing.T) {
	tests := []struct {
		name      string
		guard     Guard
		wantCalls int64
	}{
		{name: "no guard", guard: nil, wantCalls: 1},
		{name: "guard granted", guard: stubGuard{ok: true}, wantCalls: 1},
		{name: "another instance holds guard", guard: stubGuard{ok: false}, wantCalls: 0},
		{name: "guard unavailable", guard: stubGuard{err: ErrGuard}, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &countingSweeper{}
			w := NewWorker(s, tt.guard, time.Second, logger.NewNop())

			w.RunOnce(context.Background())
			assert.Equal(t, tt.wantCalls, s.calls.Load())
		})
	}
}

func TestWorker_SweepErrorDoesNotStop(t *testing.T) {
	s := &countingSweeper{err: errors.New("db down")}
	w := NewWorker(s, nil, time.Second, logger.NewNop())

	w.RunOnce(context.Background())
	w.RunOnce(context.Background())
	assert.Equal(t, int64(2), s.calls.Load())
}

func TestRedisGuard_TryAcquire(t *testing.T) {
	client := &fakeRedis{ok: true}
	g := NewRedisGuard(client, "", "instance-a", 10*time.Second)

	ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, client.calls, 1)
	assert.Equal(t, DefaultGuardKey, client.calls[0].key)
	assert.Equal(t, "instance-a", client.calls[0].value)
	assert.Equal(t, 9*time.Second, client.calls[0].ttl)
}

func TestRedisGuard_TakenByOther(t *testing.T) {
	g := NewRedisGuard(&fakeRedis{ok: false}, "custom", "instance-b", time.Second)

	ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisGuard_Error(t *testing.T) {
	g := NewRedisGuard(&fakeRedis{err: errors.New("connection refused")}, "", "instance-a", time.Second)

	ok, err := g.TryAcquire(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrGuard)
}
