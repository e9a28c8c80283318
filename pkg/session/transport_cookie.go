package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// CookieTransport implements Transport using cookies
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	signed     bool
	options    []cookie.Option
}

// NewCookieTransport creates a new cookie-based transport. When signed is
// true the manager must hold secrets.
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, signed bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		signed:     signed,
		options:    opts,
	}
}

// GetToken extracts the session token from the cookie. A cookie with a bad
// signature is reported as missing.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	var (
		token string
		err   error
	)
	if t.signed {
		token, err = t.cookieMgr.GetSigned(r, t.cookieName)
	} else {
		token, err = t.cookieMgr.Get(r, t.cookieName)
	}

	switch {
	case errors.Is(err, cookie.ErrCookieNotFound):
		return "", ErrTokenNotFound
	case err != nil:
		return "", errors.Join(ErrTokenNotFound, err)
	case token == "":
		return "", ErrTokenNotFound
	}
	return token, nil
}

// SetToken stores the session token in a cookie living for ttl, rounded up
// to whole seconds.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	opts := append([]cookie.Option{}, t.options...)
	opts = append(opts, cookie.WithMaxAge(maxAgeSeconds(ttl)))

	if t.signed {
		return t.cookieMgr.SetSigned(w, t.cookieName, token, opts...)
	}
	return t.cookieMgr.Set(w, t.cookieName, token, opts...)
}

// ClearToken removes the session cookie
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName, t.options...)
	return nil
}

func maxAgeSeconds(ttl time.Duration) int {
	secs := int(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}
