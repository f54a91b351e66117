package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "k", "someone-else"))
	_, ok, _ = l.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "k", token))
	_, ok, _ = l.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestLocalLockerLeaseExpires(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, ok, _ := l.TryLock(context.Background(), "k", time.Second)
	require.True(t, ok)
	now = now.Add(time.Second)
	_, ok, _ = l.TryLock(context.Background(), "k", time.Second)
	assert.True(t, ok)
}

func TestTryLockValidates(t *testing.T) {
	l := NewLocalLocker()
	_, _, err := l.TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, _, err = l.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestWithLockSerializes(t *testing.T) {
	l := NewLocalLocker()
	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := WithLock(context.Background(), l, "regen", time.Minute, time.Millisecond, func(context.Context) error {
				n := active.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestWithLockGivesUpOnContext(t *testing.T) {
	l := NewLocalLocker()
	_, ok, _ := l.TryLock(context.Background(), "busy", time.Minute)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran, err := WithLock(ctx, l, "busy", time.Minute, time.Millisecond, func(context.Context) error { return nil })
	assert.False(t, ran)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
