package session_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestStore_Prefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("default prefix", func(t *testing.T) {
		t.Parallel()
		backend := session.NewMemoryStore()
		store := session.NewStore(backend)

		require.NoError(t, store.Set(ctx, "abc", session.NewSession(time.Hour)))

		raw, err := backend.Get(ctx, "toa:sess:abc")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ttl":3600000}`, string(raw))
	})

	t.Run("custom prefix", func(t *testing.T) {
		t.Parallel()
		backend := session.NewMemoryStore()
		store := session.NewStore(backend, session.WithKeyPrefix("app:"))

		require.NoError(t, store.Set(ctx, "abc", session.NewSession(time.Hour)))
		raw, err := backend.Get(ctx, "app:abc")
		require.NoError(t, err)
		assert.NotNil(t, raw)

		require.NoError(t, store.Destroy(ctx, "abc"))
		raw, err = backend.Get(ctx, "app:abc")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	store := session.NewStore(session.NewMemoryStore())

	sess, err := store.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_EntryTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		fixed    time.Duration
		session  time.Duration
		expected time.Duration
	}{
		{"fixed wins", 10 * time.Minute, time.Hour, 10 * time.Minute},
		{"session ttl", 0, time.Hour, time.Hour},
		{"default", 0, 0, session.DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := newCountingBackend()
			store := session.NewStore(backend, session.WithFixedTTL(tt.fixed))

			require.NoError(t, store.Set(ctx, "id", session.NewSession(tt.session)))
			assert.Equal(t, tt.expected, time.Duration(backend.lastTTL.Load()))
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryStore())

	seen := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
	sess := session.NewSession(time.Hour)
	sess.Set("name", "test")
	sess.Set("count", 3)
	sess.Set("seen", seen)
	sess.Set("nested", map[string]any{"at": seen, "list": []any{seen, "x"}})
	sess.Set("offset", "2024-05-06T07:08:09+00:00")
	sess.Set("date", "2024-05-06")

	before, err := session.Digest(sess, "id")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "id", sess))

	got, err := store.Get(ctx, "id")
	require.NoError(t, err)
	require.NotNil(t, got)

	after, err := session.Digest(got, "id")
	require.NoError(t, err)
	assert.Equal(t, before, after, "hash must survive the store round trip")

	ts, ok := got.GetTime("seen")
	require.True(t, ok)
	assert.True(t, seen.Equal(ts))

	nested, ok := got.Get("nested")
	require.True(t, ok)
	m := nested.(map[string]any)
	assert.IsType(t, time.Time{}, m["at"])
	assert.IsType(t, time.Time{}, m["list"].([]any)[0])

	offset, ok := got.GetString("offset")
	assert.True(t, ok, "non canonical dates stay strings")
	assert.Equal(t, "2024-05-06T07:08:09+00:00", offset)

	_, ok = got.GetString("date")
	assert.True(t, ok)

	n, ok := got.GetInt("count")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestStore_InvalidRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := session.NewMemoryStore()
	store := session.NewStore(backend)

	require.NoError(t, backend.Set(ctx, session.DefaultPrefix+"bad", []byte("{not json"), time.Hour))

	_, err := store.Get(ctx, "bad")
	assert.ErrorIs(t, err, session.ErrInvalidSession)

	assert.ErrorIs(t, store.Set(ctx, "nil", nil), session.ErrInvalidSession)
}

func TestStore_BackendErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")

	backend := newCountingBackend()
	backend.fail(boom)
	store := session.NewStore(backend)

	_, err := store.Get(ctx, "id")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Set(ctx, "id", session.NewSession(time.Hour)), boom)
	assert.ErrorIs(t, store.Destroy(ctx, "id"), boom)
}

func TestStore_Availability(t *testing.T) {
	t.Parallel()
	backend := newCountingBackend()
	store := session.NewStore(backend)

	var connects, disconnects atomic.Int32
	store.OnConnect(func() { connects.Add(1) })
	store.OnDisconnect(func() { disconnects.Add(1) })

	assert.True(t, store.Available())

	backend.setConnected(true)
	assert.Zero(t, connects.Load(), "no transition, no event")

	backend.setConnected(false)
	backend.setConnected(false)
	assert.False(t, store.Available())
	assert.Equal(t, int32(1), disconnects.Load())

	backend.setConnected(true)
	assert.True(t, store.Available())
	assert.Equal(t, int32(1), connects.Load())
}

type flakyPinger struct {
	*session.MemoryStore
	down atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("down")
	}
	return nil
}

func TestStore_Watch(t *testing.T) {
	t.Parallel()
	backend := &flakyPinger{MemoryStore: session.NewMemoryStore()}
	store := session.NewStore(backend)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	backend.down.Store(true)
	require.Eventually(t, func() bool { return !store.Available() }, time.Second, 5*time.Millisecond)

	backend.down.Store(false)
	require.Eventually(t, store.Available, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
}

// notifyingPinger reports a lost connection itself, like a network client's
// dial hook, and counts pings.
type notifyingPinger struct {
	flakyPinger
	pings  atomic.Int32
	notify func(bool)
}

func (p *notifyingPinger) NotifyStatus(fn func(bool)) { p.notify = fn }

func (p *notifyingPinger) Ping(ctx context.Context) error {
	p.pings.Add(1)
	return p.flakyPinger.Ping(ctx)
}

func TestStore_RecoversWithoutWatch(t *testing.T) {
	t.Parallel()
	backend := &notifyingPinger{flakyPinger: flakyPinger{MemoryStore: session.NewMemoryStore()}}
	store := session.NewStore(backend, session.WithRecoveryBackoff(time.Millisecond, 5*time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })

	var connects atomic.Int32
	store.OnConnect(func() { connects.Add(1) })

	backend.down.Store(true)
	backend.notify(false)
	assert.False(t, store.Available())

	require.Eventually(t, func() bool { return backend.pings.Load() >= 3 }, time.Second, time.Millisecond)
	assert.False(t, store.Available(), "still down")

	backend.down.Store(false)
	require.Eventually(t, store.Available, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), connects.Load())

	// a second outage starts a fresh loop
	backend.down.Store(true)
	backend.notify(false)
	assert.False(t, store.Available())
	backend.down.Store(false)
	require.Eventually(t, store.Available, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), connects.Load())
}

func TestStore_CloseStopsRecovery(t *testing.T) {
	t.Parallel()
	backend := &notifyingPinger{flakyPinger: flakyPinger{MemoryStore: session.NewMemoryStore()}}
	store := session.NewStore(backend, session.WithRecoveryBackoff(time.Millisecond, time.Millisecond))

	backend.down.Store(true)
	backend.notify(false)
	require.Eventually(t, func() bool { return backend.pings.Load() > 0 }, time.Second, time.Millisecond)

	require.NoError(t, store.Close())
	time.Sleep(10 * time.Millisecond)
	settled := backend.pings.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, backend.pings.Load())
	assert.False(t, store.Available())
}

func TestStore_WatchWithoutPinger(t *testing.T) {
	t.Parallel()
	store := session.NewStore(session.NewMemoryStore())

	returned := make(chan struct{})
	go func() {
		store.Watch(context.Background(), time.Millisecond)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Watch should return at once for backends without Ping")
	}
}

func TestManager_Watch(t *testing.T) {
	t.Parallel()
	backend := &flakyPinger{MemoryStore: session.NewMemoryStore()}
	cfg := session.DefaultConfig()
	cfg.WatchInterval = 5 * time.Millisecond
	m, err := session.NewFromConfig(cfg,
		session.WithCookieManager(newCookieManager(t)),
		session.WithBackend(backend),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx)

	backend.down.Store(true)
	require.Eventually(t, func() bool { return !m.Store().Available() }, time.Second, 5*time.Millisecond)
	backend.down.Store(false)
	require.Eventually(t, m.Store().Available, time.Second, 5*time.Millisecond)
}
