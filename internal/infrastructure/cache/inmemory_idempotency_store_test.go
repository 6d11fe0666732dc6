package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new callback as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ws_CO_20260115101010001", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "first delivery should return true")
	})

	t.Run("returns false for replayed callback", func(t *testing.T) {
		id := "ws_CO_20260115101010002"

		isNew, err := store.MarkProcessed(ctx, id, 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, id, 1*time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "replayed delivery should return false")
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		id := "ws_CO_20260115101010003"
		ttl := 10 * time.Millisecond

		isNew, err := store.MarkProcessed(ctx, id, ttl)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, id, ttl)
		require.NoError(t, err)
		assert.True(t, isNew, "expired entry should be reprocessable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for unknown callback", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown-checkout")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for processed callback", func(t *testing.T) {
		id := "ws_CO_20260115101010004"
		_, err := store.MarkProcessed(ctx, id, 1*time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, id)
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false for expired callback", func(t *testing.T) {
		id := "ws_CO_20260115101010005"
		_, err := store.MarkProcessed(ctx, id, 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, id)
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentMarking(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	id := "ws_CO_20260115101010006"

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, id, 1*time.Hour)
			require.NoError(t, err)
			if isNew {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent delivery should win")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("cb-%d", i), 1*time.Millisecond)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, store.Size())

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 0, store.Size(), "expired entries should be removed")
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
