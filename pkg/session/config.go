package session

import (
	"net/http"
	"time"
)

// Config holds session configuration
type Config struct {
	// Key is the session cookie name
	Key string `env:"SESSION_KEY" envDefault:"toa.sid" yaml:"key"`

	// Prefix namespaces session keys in the store
	Prefix string `env:"SESSION_PREFIX" envDefault:"toa:sess:" yaml:"prefix"`

	// TTL, when positive, is the store entry lifetime for every session
	TTL time.Duration `env:"SESSION_TTL" envDefault:"0" yaml:"ttl"`

	// Rolling rewrites the cookie and the store entry on every request
	Rolling bool `env:"SESSION_ROLLING" envDefault:"false" yaml:"rolling"`

	// SidSize is the number of random bytes in generated ids (min 8)
	SidSize int `env:"SESSION_SID_SIZE" envDefault:"24" yaml:"sid_size"`

	// AllowEmpty persists freshly created sessions even when untouched
	AllowEmpty bool `env:"SESSION_ALLOW_EMPTY" envDefault:"false" yaml:"allow_empty"`

	// WatchInterval enables periodic backend pings (0 to disable)
	WatchInterval time.Duration `env:"SESSION_WATCH_INTERVAL" envDefault:"0" yaml:"watch_interval"`

	Cookie CookieConfig `envPrefix:"SESSION_COOKIE_" yaml:"cookie"`
}

// CookieConfig describes the session cookie. Path also scopes which
// requests engage the session system.
type CookieConfig struct {
	Path      string        `env:"PATH" envDefault:"/" yaml:"path"`
	HTTPOnly  bool          `env:"HTTP_ONLY" envDefault:"true" yaml:"http_only"`
	Overwrite bool          `env:"OVERWRITE" envDefault:"true" yaml:"overwrite"`
	Signed    bool          `env:"SIGNED" envDefault:"true" yaml:"signed"`
	MaxAge    time.Duration `env:"MAX_AGE" envDefault:"24h" yaml:"max_age"`
	// Expires, when set, must be in the future; new sessions live until then.
	Expires  time.Time     `env:"EXPIRES" yaml:"expires"`
	Domain   string        `env:"DOMAIN" envDefault:"" yaml:"domain"`
	Secure   bool          `env:"SECURE" envDefault:"false" yaml:"secure"`
	SameSite http.SameSite `env:"SAME_SITE" envDefault:"2" yaml:"same_site"` // 2 = SameSiteLaxMode
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Key:     "toa.sid",
		Prefix:  DefaultPrefix,
		SidSize: DefaultIDSize,
		Cookie: CookieConfig{
			Path:      "/",
			HTTPOnly:  true,
			Overwrite: true,
			Signed:    true,
			MaxAge:    DefaultTTL,
			SameSite:  http.SameSiteLaxMode,
		},
	}
}

// NewFromConfig creates a new Manager from the provided Config.
// Options are applied after the config, so they win.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
