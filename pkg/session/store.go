package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultPrefix namespaces session keys in the backend.
	DefaultPrefix = "toa:sess:"

	// DefaultTTL applies when neither the store nor the session sets a lifetime.
	DefaultTTL = 24 * time.Hour

	defaultRecoveryMin = 200 * time.Millisecond
	defaultRecoveryMax = 10 * time.Second
)

// Backend is a key-value engine with per-entry expiry.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the stored value, or nil and no error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key until ttl elapses.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Destroy removes key. Removing a missing key is not an error.
	Destroy(ctx context.Context, key string) error
}

// StatusNotifier is implemented by backends that report connectivity changes.
type StatusNotifier interface {
	NotifyStatus(fn func(connected bool))
}

// Pinger is implemented by backends that can be probed for liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithFixedTTL makes every entry expire after ttl regardless of the session's
// own lifetime. Zero disables the override.
func WithFixedTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRecoveryBackoff sets the delays between pings while the backend is
// unavailable. The delay starts at min and doubles up to max.
func WithRecoveryBackoff(minDelay, maxDelay time.Duration) StoreOption {
	return func(s *Store) {
		if minDelay > 0 {
			s.recoveryMin = minDelay
		}
		if maxDelay > 0 {
			s.recoveryMax = maxDelay
		}
	}
}

// Store adapts a Backend to sessions: it prefixes keys, picks the entry TTL
// and encodes records. It also tracks backend availability.
type Store struct {
	backend Backend
	prefix  string
	ttl     time.Duration

	available   atomic.Bool
	recovering  atomic.Bool
	recoveryMin time.Duration
	recoveryMax time.Duration
	closed      chan struct{}
	closeOnce   sync.Once

	mu           sync.Mutex
	onConnect    []func()
	onDisconnect []func()
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:     backend,
		prefix:      DefaultPrefix,
		recoveryMin: defaultRecoveryMin,
		recoveryMax: defaultRecoveryMax,
		closed:      make(chan struct{}),
	}
	s.available.Store(true)

	for _, opt := range opts {
		opt(s)
	}
	s.recoveryMax = max(s.recoveryMax, s.recoveryMin)

	if n, ok := backend.(StatusNotifier); ok {
		n.NotifyStatus(s.setAvailable)
	}

	return s
}

// Close stops a running recovery loop. The backend itself is left open.
func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Backend returns the wrapped backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Get loads the session stored under id. It returns nil and no error when
// the entry does not exist. RFC 3339 strings are turned into time.Time
// values wherever that conversion is lossless.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.backend.Get(ctx, s.prefix+id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	for k, v := range sess.Values {
		sess.Values[k] = normalizeDates(v)
	}

	return &sess, nil
}

// Set persists sess under id. The entry TTL is the fixed store TTL when set,
// otherwise the session TTL, otherwise DefaultTTL.
func (s *Store) Set(ctx context.Context, id string, sess *Session) error {
	if sess == nil {
		return ErrInvalidSession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	return s.backend.Set(ctx, s.prefix+id, data, s.entryTTL(sess))
}

// Destroy removes the entry stored under id.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.backend.Destroy(ctx, s.prefix+id)
}

func (s *Store) entryTTL(sess *Session) time.Duration {
	switch {
	case s.ttl > 0:
		return s.ttl
	case sess.TTL > 0:
		return sess.TTL
	default:
		return DefaultTTL
	}
}

// Available reports the last known backend status.
func (s *Store) Available() bool {
	return s.available.Load()
}

// OnConnect registers fn to run each time the backend comes back.
func (s *Store) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, fn)
}

// OnDisconnect registers fn to run each time the backend goes away.
func (s *Store) OnDisconnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisconnect = append(s.onDisconnect, fn)
}

// Watch pings the backend every interval and updates availability until ctx
// is done. Backends that do not implement Pinger are left alone.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	p, ok := s.backend.(Pinger)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.setAvailable(p.Ping(ctx) == nil)
		}
	}
}

// setAvailable records the status and notifies observers on transitions only.
func (s *Store) setAvailable(connected bool) {
	if s.available.Swap(connected) == connected {
		return
	}

	s.mu.Lock()
	observers := s.onDisconnect
	if connected {
		observers = s.onConnect
	}
	observers = append([]func(){}, observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}

	if !connected {
		s.startRecovery()
	}
}

// startRecovery pings a Pinger backend with exponential backoff until it answers,
// so availability returns even when nothing else touches the backend.
// At most one loop runs at a time.
func (s *Store) startRecovery() {
	p, ok := s.backend.(Pinger)
	if !ok || s.isClosed() || !s.recovering.CompareAndSwap(false, true) {
		return
	}

	go func() {
		for {
			s.probe(p)
			s.recovering.Store(false)
			// a disconnect reported after the last probe found no loop to start
			if s.isClosed() || s.available.Load() || !s.recovering.CompareAndSwap(false, true) {
				return
			}
		}
	}()
}

func (s *Store) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Store) probe(p Pinger) {
	delay := s.recoveryMin
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for !s.available.Load() {
		select {
		case <-s.closed:
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.recoveryMax)
		err := p.Ping(ctx)
		cancel()
		if err == nil {
			s.setAvailable(true)
			return
		}

		delay = min(delay*2, s.recoveryMax)
		timer.Reset(delay)
	}
}

func normalizeDates(v any) any {
	switch x := v.(type) {
	case string:
		if t, ok := parseDate(x); ok {
			return t
		}
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeDates(e)
		}
	case []any:
		for i, e := range x {
			x[i] = normalizeDates(e)
		}
	}
	return v
}

// parseDate accepts only strings that time.Time would encode to verbatim,
// so normalized sessions hash exactly like the stored bytes.
func parseDate(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[10] != 'T' {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.Format(time.RFC3339Nano) != s {
		return time.Time{}, false
	}
	return t, true
}
