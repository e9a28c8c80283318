package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hmac"

// countingBackend wraps a MemoryStore and counts calls. It can be told to
// fail every call and reports status changes like a network backend.
type countingBackend struct {
	*session.MemoryStore

	gets, sets, destroys atomic.Int32
	lastTTL              atomic.Int64

	mu     sync.Mutex
	err    error
	notify func(bool)
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryStore: session.NewMemoryStore()}
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.gets.Add(1)
	if err := b.failure(); err != nil {
		return nil, err
	}
	return b.MemoryStore.Get(ctx, key)
}

func (b *countingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.sets.Add(1)
	b.lastTTL.Store(int64(ttl))
	if err := b.failure(); err != nil {
		return err
	}
	return b.MemoryStore.Set(ctx, key, value, ttl)
}

func (b *countingBackend) Destroy(ctx context.Context, key string) error {
	b.destroys.Add(1)
	if err := b.failure(); err != nil {
		return err
	}
	return b.MemoryStore.Destroy(ctx, key)
}

func (b *countingBackend) NotifyStatus(fn func(bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}

func (b *countingBackend) setConnected(connected bool) {
	b.mu.Lock()
	fn := b.notify
	b.mu.Unlock()
	if fn != nil {
		fn(connected)
	}
}

func (b *countingBackend) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *countingBackend) failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *countingBackend) reset() {
	b.gets.Store(0)
	b.sets.Store(0)
	b.destroys.Store(0)
}

func newCookieManager(t testing.TB) *cookie.Manager {
	t.Helper()
	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	return mgr
}

// newManager builds a manager with signed cookies over backend.
func newManager(t testing.TB, backend session.Backend, opts ...session.Option) *session.Manager {
	t.Helper()
	base := []session.Option{
		session.WithCookieManager(newCookieManager(t)),
		session.WithBackend(backend),
	}
	m, err := session.New(append(base, opts...)...)
	require.NoError(t, err)
	return m
}

// requestWithCookies returns a request to path carrying every cookie set on w.
func requestWithCookies(path string, w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if w == nil {
		return r
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			r.AddCookie(c)
		}
	}
	return r
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
