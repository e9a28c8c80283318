package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestMemoryStore_SetGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()

	value := []byte(`{"ttl":1000}`)
	require.NoError(t, store.Set(ctx, "k", value, time.Hour))

	value[0] = 'X'
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"ttl":1000}`, string(got), "stored value is a snapshot")

	got[0] = 'Y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, `{"ttl":1000}`, string(again), "returned value is a copy")

	missing, err := store.Get(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Set(ctx, "short", []byte("a"), 20*time.Millisecond))
	require.NoError(t, store.Set(ctx, "long", []byte("b"), time.Hour))

	require.Eventually(t, func() bool {
		v, _ := store.Get(ctx, "short")
		return v == nil
	}, time.Second, 10*time.Millisecond)

	v, _ := store.Get(ctx, "long")
	assert.Equal(t, []byte("b"), v)
}

func TestMemoryStore_Destroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, store.Destroy(ctx, "k"))
	require.NoError(t, store.Destroy(ctx, "k"), "destroying twice is fine")

	v, _ := store.Get(ctx, "k")
	assert.Nil(t, v)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()

	for i := range 5 {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("old-%d", i), []byte("x"), time.Millisecond))
	}
	require.NoError(t, store.Set(ctx, "fresh", []byte("x"), time.Hour))

	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, 5, store.DeleteExpired(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Capacity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore(session.WithCapacity(2))

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))
	_, _ = store.Get(ctx, "a")
	require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Hour))

	assert.Equal(t, 2, store.Len())
	b, _ := store.Get(ctx, "b")
	assert.Nil(t, b, "least recently used entry is evicted")
	a, _ := store.Get(ctx, "a")
	assert.NotNil(t, a)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore(session.WithCleanupInterval(10 * time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close(), "close is idempotent")
}

func TestMemoryStore_Concurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k-%d", i%10)
			_ = store.Set(ctx, key, []byte("v"), time.Hour)
			_, _ = store.Get(ctx, key)
			if i%7 == 0 {
				_ = store.Destroy(ctx, key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 10)
}

func BenchmarkMemoryStore_SetGet(b *testing.B) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	value := []byte(`{"name":"test","ttl":86400000}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("k-%d", i%1000)
		_ = store.Set(ctx, key, value, time.Hour)
		_, _ = store.Get(ctx, key)
	}
}
