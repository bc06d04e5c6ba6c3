package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreIncr(t *testing.T) {
	ctx := context.Background()

	t.Run("counts up to the limit", func(t *testing.T) {
		s := NewMemoryStore()

		for i := 1; i <= 3; i++ {
			allowed, count, _, err := s.Incr(ctx, "k", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, i, count)
		}
	})

	t.Run("refuses to increment at the limit", func(t *testing.T) {
		s := NewMemoryStore()

		_, _, firstReset, err := s.Incr(ctx, "k", 1, time.Minute)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			allowed, count, resetAt, err := s.Incr(ctx, "k", 1, time.Minute)
			require.NoError(t, err)
			assert.False(t, allowed)
			assert.Equal(t, 1, count, "rejected request must not consume quota")
			assert.Equal(t, firstReset, resetAt, "reset time must not move on rejection")
		}
	})

	t.Run("resets when the window lapses", func(t *testing.T) {
		s := NewMemoryStore()
		current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return current }

		allowed, _, _, err := s.Incr(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _, _, err = s.Incr(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		current = current.Add(time.Minute)

		allowed, count, resetAt, err := s.Incr(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, count)
		assert.Equal(t, current.Add(time.Minute), resetAt)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := NewMemoryStore()

		allowed, _, _, err := s.Incr(ctx, "a", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _, _, err = s.Incr(ctx, "b", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "a different key must have its own counter")
	})

	t.Run("is safe under concurrent use", func(t *testing.T) {
		s := NewMemoryStore()
		const workers = 50
		const limit = 10

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowedCount := 0

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				allowed, _, _, err := s.Incr(ctx, "shared", limit, time.Minute)
				assert.NoError(t, err)
				if allowed {
					mu.Lock()
					allowedCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, limit, allowedCount, "exactly limit requests may pass within one window")
	})
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("drops lapsed counters and keeps live ones", func(t *testing.T) {
		s := NewMemoryStore()
		current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return current }

		_, _, _, err := s.Incr(ctx, "old", 5, time.Minute)
		require.NoError(t, err)

		current = current.Add(30 * time.Second)
		_, _, _, err = s.Incr(ctx, "fresh", 5, time.Minute)
		require.NoError(t, err)

		current = current.Add(45 * time.Second)

		removed, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		assert.NotContains(t, s.entries, "old")
		assert.Contains(t, s.entries, "fresh")
	})

	t.Run("is a no-op when nothing has lapsed", func(t *testing.T) {
		s := NewMemoryStore()
		_, _, _, err := s.Incr(ctx, "k", 5, time.Hour)
		require.NoError(t, err)

		removed, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
