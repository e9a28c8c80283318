package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie manager configuration
type Config struct {
	Secrets   string        `env:"COOKIE_SECRETS" envDefault:"" yaml:"secrets"`
	Path      string        `env:"COOKIE_PATH" envDefault:"/" yaml:"path"`
	Domain    string        `env:"COOKIE_DOMAIN" envDefault:"" yaml:"domain"`
	MaxAge    int           `env:"COOKIE_MAX_AGE" envDefault:"0" yaml:"max_age"`
	Secure    bool          `env:"COOKIE_SECURE" envDefault:"false" yaml:"secure"`
	HttpOnly  bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true" yaml:"http_only"`
	SameSite  http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2" yaml:"same_site"` // 2 = SameSiteLaxMode
	Overwrite bool          `env:"COOKIE_OVERWRITE" envDefault:"true" yaml:"overwrite"`
}

// DefaultConfig returns default cookie configuration
func DefaultConfig() Config {
	return Config{
		Path:      "/",
		HttpOnly:  true,
		SameSite:  http.SameSiteLaxMode,
		Overwrite: true,
	}
}

// parseSecrets splits the comma separated secrets, dropping blanks.
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig creates a new Manager from the provided Config.
// Only non-zero values from the config are applied. Without secrets the
// manager can only handle plain cookies.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := make([]Option, 0, 7)

	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		configOpts = append(configOpts, WithMaxAge(cfg.MaxAge))
	}
	if cfg.Secure {
		configOpts = append(configOpts, WithSecure(cfg.Secure))
	}
	if cfg.HttpOnly {
		configOpts = append(configOpts, WithHTTPOnly(cfg.HttpOnly))
	}
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}
	if cfg.Overwrite {
		configOpts = append(configOpts, WithOverwrite(cfg.Overwrite))
	}

	configOpts = append(configOpts, opts...)

	secrets := cfg.parseSecrets()
	if len(secrets) == 0 {
		return NewUnsigned(configOpts...), nil
	}
	return New(secrets, configOpts...)
}
