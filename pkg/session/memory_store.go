package session

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cache"
)

// DefaultMemoryCapacity bounds the number of entries a MemoryStore keeps.
const DefaultMemoryCapacity = 100_000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore implements Backend in process memory. Entries expire after
// their TTL and the least recently used ones are evicted once the capacity
// is reached. Intended for tests and single-instance deployments.
type MemoryStore struct {
	items  *cache.LRUCache[string, memoryEntry]
	ticker *time.Ticker
	done   chan struct{}
	now    func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	capacity        int
	cleanupInterval time.Duration
}

// WithCapacity sets the maximum number of stored sessions.
func WithCapacity(n int) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithCleanupInterval enables a background sweep of expired entries.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.cleanupInterval = interval
	}
}

// NewMemoryStore creates a new in-memory session backend
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := memoryConfig{capacity: DefaultMemoryCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := &MemoryStore{
		items: cache.NewLRUCache[string, memoryEntry](cfg.capacity),
		done:  make(chan struct{}),
		now:   time.Now,
	}

	if cfg.cleanupInterval > 0 {
		store.ticker = time.NewTicker(cfg.cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Get returns a copy of the stored value, or nil when missing or expired.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := m.items.Get(key)
	if !ok {
		return nil, nil
	}

	if !m.now().Before(entry.expiresAt) {
		m.items.Remove(key)
		return nil, nil
	}

	return slices.Clone(entry.value), nil
}

// Set stores a copy of value until ttl elapses.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Put(key, memoryEntry{
		value:     slices.Clone(value),
		expiresAt: m.now().Add(ttl),
	})
	return nil
}

// Destroy removes a stored value
func (m *MemoryStore) Destroy(ctx context.Context, key string) error {
	m.items.Remove(key)
	return nil
}

// DeleteExpired removes all expired entries and returns how many were dropped.
func (m *MemoryStore) DeleteExpired(ctx context.Context) int {
	now := m.now()
	return m.items.RemoveFunc(func(_ string, e memoryEntry) bool {
		return !now.Before(e.expiresAt)
	})
}

// Len returns the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	return m.items.Len()
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		select {
		case <-m.done:
		default:
			close(m.done)
		}
	}
	return nil
}

// cleanupLoop runs periodic cleanup of expired sessions
func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}
