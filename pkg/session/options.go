package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithStore sets a ready-made store adapter. Prefix and fixed TTL from the
// config are ignored in that case.
func WithStore(store *Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithBackend sets the storage backend; it is wrapped in a Store using the
// configured prefix and TTL. Defaults to a MemoryStore.
func WithBackend(backend Backend) Option {
	return func(m *Manager) {
		m.backend = backend
	}
}

// WithTransport replaces the default cookie transport
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithKey sets the session cookie name
func WithKey(key string) Option {
	return func(m *Manager) {
		m.config.Key = key
	}
}

// WithPrefix sets the store key namespace
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.config.Prefix = prefix
	}
}

// WithTTL sets a fixed store entry lifetime
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.config.TTL = ttl
	}
}

// WithRolling makes every request rewrite the cookie and the store entry
func WithRolling(rolling bool) Option {
	return func(m *Manager) {
		m.config.Rolling = rolling
	}
}

// WithAllowEmpty persists new sessions even when nothing was set
func WithAllowEmpty(allow bool) Option {
	return func(m *Manager) {
		m.config.AllowEmpty = allow
	}
}

// WithSidSize sets the number of random bytes in generated ids
func WithSidSize(size int) Option {
	return func(m *Manager) {
		m.config.SidSize = size
	}
}

// WithCookie sets the session cookie attributes
func WithCookie(cfg CookieConfig) Option {
	return func(m *Manager) {
		m.config.Cookie = cfg
	}
}

// WithIDGenerator overrides session id generation
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Manager) {
		if gen != nil {
			m.genID = gen
		}
	}
}

// WithCookieManager sets the cookie manager for the default cookie transport.
// Extra cookie options are applied on every write.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}

// WithSkipPaths excludes exact request paths from session handling
func WithSkipPaths(paths ...string) Option {
	return func(m *Manager) {
		m.skipPaths = append(m.skipPaths, paths...)
	}
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithErrorHandler sets the handler the middleware calls when loading or
// saving the session fails
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.errorHandler = h
		}
	}
}
