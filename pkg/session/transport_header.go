package session

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTokenHeader carries the session token when no header name is given.
const DefaultTokenHeader = "X-Session-Token"

// HeaderTransport carries the session token in a request/response header,
// for API clients that do not keep cookies. The response also gets a
// "<header>-Expires" header with the token's expiry in RFC 3339.
type HeaderTransport struct {
	header string
	scheme string
	now    func() time.Time
}

// HeaderOption configures a HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets the auth scheme written before the token, "Bearer "
// by default. The scheme is matched case-insensitively on requests.
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.scheme = prefix
	}
}

// NewHeaderTransport creates a transport using header, or
// DefaultTokenHeader when header is empty.
func NewHeaderTransport(header string, opts ...HeaderOption) *HeaderTransport {
	if header == "" {
		header = DefaultTokenHeader
	}
	t := &HeaderTransport{
		header: http.CanonicalHeaderKey(header),
		scheme: "Bearer ",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(t.header))
	if scheme := strings.TrimSpace(t.scheme); scheme != "" {
		if strings.EqualFold(value, scheme) {
			return "", ErrTokenNotFound
		}
		if n := len(t.scheme); len(value) >= n && strings.EqualFold(value[:n], t.scheme) {
			value = strings.TrimSpace(value[n:])
		}
	}
	if value == "" {
		return "", ErrTokenNotFound
	}
	return value, nil
}

func (t *HeaderTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	h := w.Header()
	h.Set(t.header, t.scheme+token)
	if ttl > 0 {
		h.Set(t.expiresHeader(), t.now().Add(ttl).UTC().Format(time.RFC3339))
	}
	return nil
}

func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	h := w.Header()
	h.Del(t.header)
	h.Del(t.expiresHeader())
	return nil
}

func (t *HeaderTransport) expiresHeader() string {
	return t.header + "-Expires"
}
