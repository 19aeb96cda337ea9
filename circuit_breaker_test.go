package lotofacil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every call while failing is set
type flakyStore struct {
	*MemoryStore
	failing bool
	calls   int
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	if f.failing {
		return nil, ErrStoreFailure.WithCause(errors.New("connection refused"))
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.calls++
	if f.failing {
		return ErrStoreFailure.WithCause(errors.New("connection refused"))
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func testBreakerConfig() *CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	cfg.MinRequests = 3
	cfg.FailureRatio = 0.6
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRequests = 1
	return cfg
}

func TestBreakerStore_Trips(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
	bs := NewBreakerStore(inner, testBreakerConfig(), nil)

	assert.Equal(t, "closed", bs.State())
	for range 3 {
		_, err := bs.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrStoreFailure)
	}
	assert.Equal(t, "open", bs.State())
	assert.Equal(t, float64(2), bs.StateNumeric())

	// 熔断打开后请求不会到达底层存储
	calls := inner.calls
	_, err := bs.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.ErrorIs(t, bs.Set(ctx, "k", []byte("v")), ErrCircuitBreakerOpen)
	assert.Equal(t, calls, inner.calls)
	assert.ErrorIs(t, bs.Ping(ctx), ErrCircuitBreakerOpen)

	health := bs.Health()
	assert.Equal(t, false, health["healthy"])

	t.Run("recovers_after_timeout", func(t *testing.T) {
		inner.failing = false
		time.Sleep(80 * time.Millisecond)

		assert.Equal(t, "half-open", bs.State())
		require.NoError(t, bs.Set(ctx, "k", []byte("v")))
		assert.Equal(t, "closed", bs.State())
	})
}

func TestBreakerStore_NotFoundIsNotFailure(t *testing.T) {
	ctx := context.Background()
	bs := NewBreakerStore(NewMemoryStore(), testBreakerConfig(), nil)

	for range 10 {
		_, err := bs.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", bs.State())
	assert.Equal(t, uint32(0), bs.Counts().TotalFailures)
}

func TestBreakerStore_Reset(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
	bs := NewBreakerStore(inner, testBreakerConfig(), nil)

	for range 3 {
		_, _ = bs.Get(ctx, "k")
	}
	require.Equal(t, "open", bs.State())

	bs.Reset()
	assert.Equal(t, "closed", bs.State())
	assert.Equal(t, uint32(0), bs.Counts().Requests)
}

func TestBreakerStore_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := testBreakerConfig()
	cfg.Enabled = false

	inner := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
	bs := NewBreakerStore(inner, cfg, nil)

	for range 10 {
		_, err := bs.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrStoreFailure)
	}
	assert.Equal(t, "disabled", bs.State())
	assert.Equal(t, float64(-1), bs.StateNumeric())
	assert.Equal(t, true, bs.Health()["healthy"])

	inner.failing = false
	require.NoError(t, bs.Set(ctx, "k", []byte("v")))
	got, err := bs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.NoError(t, bs.Ping(ctx))
	assert.NoError(t, bs.Delete(ctx, "k"))
}
