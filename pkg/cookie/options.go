package cookie

import (
	"net/http"
	"time"
)

// Options are the attributes applied to an outgoing cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int // seconds; 0 = session cookie, negative = delete
	Expires  time.Time
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
	// Overwrite drops Set-Cookie headers for the same name that were already
	// added to the response.
	Overwrite bool
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

func WithDomain(domain string) Option {
	return func(o *Options) {
		o.Domain = domain
	}
}

func WithMaxAge(seconds int) Option {
	return func(o *Options) {
		o.MaxAge = seconds
	}
}

// WithExpires sets an absolute expiry. When MaxAge is positive the expiry is
// derived from it instead.
func WithExpires(t time.Time) Option {
	return func(o *Options) {
		o.Expires = t
	}
}

func WithSecure(secure bool) Option {
	return func(o *Options) {
		o.Secure = secure
	}
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) {
		o.HttpOnly = httpOnly
	}
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) {
		o.SameSite = sameSite
	}
}

func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

// applyOptions returns a copy of base with opts applied; base is untouched.
func applyOptions(base Options, opts []Option) Options {
	result := base
	for _, opt := range opts {
		opt(&result)
	}
	return result
}
