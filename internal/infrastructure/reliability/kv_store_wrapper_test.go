package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/infrastructure/repositories/memory"
	"throttlelab/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails the first failures writes, then delegates.
type flakyStore struct {
	*memory.MemoryKVStore
	failures int
	calls    int
	err      error
}

func (f *flakyStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.MemoryKVStore.SetAll(ctx, entries)
}

func fastRetry() retry.Config {
	return retry.Config{
		Enabled:      true,
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestRetryingKVStore_RecoversFromTransientFailure(t *testing.T) {
	inner := &flakyStore{MemoryKVStore: memory.NewMemoryKVStore(), failures: 2, err: errors.New("connection reset")}
	store := NewRetryingKVStore(inner, "settings", fastRetry(), zap.NewNop().Sugar())

	err := store.Set(context.Background(), domain.KeyBitrateIntervalMs, domain.BitrateIntervalMs)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	var got int64
	require.NoError(t, store.Get(context.Background(), domain.KeyBitrateIntervalMs, &got))
	assert.Equal(t, domain.BitrateIntervalMs, got)
}

func TestRetryingKVStore_GivesUp(t *testing.T) {
	boom := errors.New("disk full")
	inner := &flakyStore{MemoryKVStore: memory.NewMemoryKVStore(), failures: 10, err: boom}
	store := NewRetryingKVStore(inner, "variables", fastRetry(), zap.NewNop().Sugar())

	err := store.Set(context.Background(), domain.KeyRunning, true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingKVStore_DoesNotRetryCancellation(t *testing.T) {
	inner := &flakyStore{MemoryKVStore: memory.NewMemoryKVStore(), failures: 10, err: context.DeadlineExceeded}
	store := NewRetryingKVStore(inner, "variables", fastRetry(), zap.NewNop().Sugar())

	err := store.Set(context.Background(), domain.KeyRunning, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}
