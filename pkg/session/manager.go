package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Manager runs the session lifecycle: it scopes requests by path, loads or
// creates the session and decides at the end of the request whether to
// persist, skip or destroy it.
type Manager struct {
	config        Config
	store         *Store
	backend       Backend
	ownsBackend   bool
	ownsStore     bool
	transport     Transport
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
	genID         IDGenerator
	skipPaths     []string
	logger        *slog.Logger
	recorder      Recorder
	errorHandler  ErrorHandler
	now           func() time.Time
}

// New creates a new session manager with the given options.
// Without a backend an in-memory one is used. Without a transport, cookies
// are used; signed cookies require WithCookieManager with secrets.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config:   DefaultConfig(),
		genID:    GenerateID,
		logger:   logger.Discard(),
		recorder: nopRecorder{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.config.Key == "" {
		m.config.Key = "toa.sid"
	}
	if m.config.Prefix == "" {
		m.config.Prefix = DefaultPrefix
	}
	if m.config.SidSize < minIDSize {
		m.config.SidSize = DefaultIDSize
	}
	if m.config.Cookie.Path == "" {
		m.config.Cookie.Path = "/"
	}
	if exp := m.config.Cookie.Expires; !exp.IsZero() && !exp.After(m.now()) {
		return nil, fmt.Errorf("%w: cookie expires %s is not in the future", ErrInvalidConfig, exp.Format(time.RFC3339))
	}

	if m.errorHandler == nil {
		m.errorHandler = defaultErrorHandler(m.logger)
	}

	if m.store == nil {
		if m.backend == nil {
			m.backend = NewMemoryStore()
			m.ownsBackend = true
		}
		m.store = NewStore(m.backend,
			WithKeyPrefix(m.config.Prefix),
			WithFixedTTL(m.config.TTL),
		)
		m.ownsStore = true
	}

	m.store.OnDisconnect(func() {
		m.logger.Warn("session store disconnected", logger.Component("session"))
	})
	m.store.OnConnect(func() {
		m.logger.Info("session store connected", logger.Component("session"))
	})

	if m.transport == nil {
		t, err := m.cookieTransport()
		if err != nil {
			return nil, err
		}
		m.transport = t
	}

	return m, nil
}

func (m *Manager) cookieTransport() (*CookieTransport, error) {
	cfg := m.config.Cookie

	mgr := m.cookieManager
	if mgr == nil {
		if cfg.Signed {
			return nil, errors.Join(ErrInvalidConfig, ErrNoCookieManager)
		}
		mgr = cookie.NewUnsigned()
	}
	if cfg.Signed && !mgr.CanSign() {
		return nil, errors.Join(ErrInvalidConfig, ErrNoCookieManager, cookie.ErrNoSecret)
	}

	opts := []cookie.Option{
		cookie.WithPath(cfg.Path),
		cookie.WithHTTPOnly(cfg.HTTPOnly),
		cookie.WithOverwrite(cfg.Overwrite),
		cookie.WithSecure(cfg.Secure),
	}
	if cfg.Domain != "" {
		opts = append(opts, cookie.WithDomain(cfg.Domain))
	}
	if cfg.SameSite != 0 {
		opts = append(opts, cookie.WithSameSite(cfg.SameSite))
	}
	if !cfg.Expires.IsZero() {
		opts = append(opts, cookie.WithExpires(cfg.Expires))
	}
	opts = append(opts, m.cookieOptions...)

	return NewCookieTransport(mgr, m.config.Key, cfg.Signed, opts...), nil
}

// Store returns the store adapter, for registering availability observers
// or watching the backend.
func (m *Manager) Store() *Store {
	return m.store
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Close stops the store created by New and releases the in-memory backend
// created by New, if any. Backends passed with WithBackend stay open.
func (m *Manager) Close() error {
	if m.ownsStore {
		_ = m.store.Close()
	}
	if !m.ownsBackend {
		return nil
	}
	if c, ok := m.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Watch pings the backend every Config.WatchInterval until ctx is done.
// It returns at once when the interval is zero.
func (m *Manager) Watch(ctx context.Context) {
	m.store.Watch(ctx, m.config.WatchInterval)
}

// MatchScope reports whether requests to path engage the session system.
func (m *Manager) MatchScope(path string) bool {
	return strings.HasPrefix(path, m.config.Cookie.Path) && !slices.Contains(m.skipPaths, path)
}

// Load returns the request's session. A cookie whose session is missing,
// undecodable or fails the integrity check is treated as absent and a new
// session is created. Only an unavailable store or a backend error fail.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Handle, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			return nil, err
		}
		if errors.Is(err, cookie.ErrInvalidSignature) || errors.Is(err, cookie.ErrInvalidFormat) {
			m.logger.DebugContext(ctx, "session cookie rejected", logger.Error(err))
		}
	}
	id, hash := splitToken(token)

	if !m.store.Available() {
		m.recorder.RecordError("load")
		return nil, ErrStoreUnavailable
	}

	if id == "" {
		return m.create(ctx, LoadCreated)
	}

	sess, err := m.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrInvalidSession):
		m.logger.DebugContext(ctx, "stored session undecodable", logger.SessionID(id), logger.Error(err))
	case err != nil:
		m.recorder.RecordError("load")
		return nil, err
	case sess != nil:
		if digest, err := Digest(sess, id); err == nil && digest == hash {
			m.recorder.RecordLoad(LoadRestored)
			return &Handle{id: id, session: sess, originalHash: hash}, nil
		}
		m.logger.DebugContext(ctx, "session integrity check failed", logger.SessionID(id))
	}

	return m.create(ctx, LoadRejected)
}

// splitToken separates "<id>.<hash>" at the last dot; the hash is a decimal
// integer, so ids may contain dots.
func splitToken(token string) (id, hash string) {
	i := strings.LastIndex(token, ".")
	if i < 0 {
		return token, ""
	}
	return token[:i], token[i+1:]
}

func (m *Manager) create(ctx context.Context, result LoadResult) (*Handle, error) {
	sess := NewSession(m.sessionTTL())
	id := m.genID(m.config.SidSize)

	hash, err := Digest(sess, id)
	if err != nil {
		m.recorder.RecordError("load")
		return nil, err
	}

	m.recorder.RecordLoad(result)
	m.logger.DebugContext(ctx, "session created", logger.SessionID(id), slog.String("result", string(result)))

	return &Handle{id: id, session: sess, originalHash: hash, isNew: true}, nil
}

// sessionTTL is the lifetime of a freshly created session: until the cookie
// expiry if one is set, otherwise the cookie max-age, the store TTL or the
// default of one day.
func (m *Manager) sessionTTL() time.Duration {
	cfg := m.config
	switch {
	case !cfg.Cookie.Expires.IsZero():
		return cfg.Cookie.Expires.Sub(m.now())
	case cfg.Cookie.MaxAge > 0:
		return cfg.Cookie.MaxAge
	case cfg.TTL > 0:
		return cfg.TTL
	default:
		return DefaultTTL
	}
}

// Finalize applies the end-of-request decision for h. It must run before
// the response headers are sent.
func (m *Manager) Finalize(ctx context.Context, w http.ResponseWriter, h *Handle) error {
	if h == nil {
		return ErrNoHandle
	}

	if h.destroyed && h.isNew {
		m.recorder.RecordFinalize(ActionDiscarded)
		return nil
	}

	if h.destroyed || h.session.TTL <= 0 {
		return m.destroy(ctx, w, h)
	}

	hash, err := Digest(h.session, h.id)
	if err != nil {
		m.recorder.RecordError("finalize")
		return err
	}

	if !m.config.Rolling && hash == h.originalHash && !(m.config.AllowEmpty && h.isNew) {
		m.recorder.RecordFinalize(ActionSkipped)
		return nil
	}

	if err := m.store.Set(ctx, h.id, h.session); err != nil {
		m.recorder.RecordError("finalize")
		return err
	}
	if err := m.transport.SetToken(w, h.id+"."+hash, h.session.TTL); err != nil {
		m.recorder.RecordError("finalize")
		return err
	}

	m.recorder.RecordFinalize(ActionPersisted)
	return nil
}

func (m *Manager) destroy(ctx context.Context, w http.ResponseWriter, h *Handle) error {
	if err := m.transport.ClearToken(w); err != nil {
		m.recorder.RecordError("finalize")
		return err
	}
	if err := m.store.Destroy(ctx, h.id); err != nil {
		m.recorder.RecordError("finalize")
		return err
	}

	m.recorder.RecordFinalize(ActionDestroyed)
	m.logger.DebugContext(ctx, "session destroyed", logger.SessionID(h.id))
	return nil
}
