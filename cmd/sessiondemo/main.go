// Command sessiondemo serves a small JSON API backed by sessionkit. Every
// request under the cookie path sets name=test on its session; /delete
// destroys it. The response shows the path, the session and its id.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/metrics"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Backend string            `env:"SESSION_BACKEND" envDefault:"memory" yaml:"backend"`
	Log     logger.Config     `yaml:"log"`
	HTTP    httpserver.Config `yaml:"http"`
	Cookie  cookie.Config     `yaml:"cookie"`
	Session session.Config    `yaml:"session"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("sessiondemo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if path := os.Getenv("SESSIONKIT_CONFIG_FILE"); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return err
		}
	} else if err := config.Load(&cfg); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		session.LoggerExtractor(),
	))
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := openBackend(ctx, cfg.Backend, log)
	if err != nil {
		return err
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}
	if !cookies.CanSign() && cfg.Session.Cookie.Signed {
		if cfg.Log.Env == logger.EnvProduction {
			return errors.New("COOKIE_SECRETS is required for signed session cookies")
		}
		log.Warn("no cookie secrets configured, session cookies are unsigned")
		cfg.Session.Cookie.Signed = false
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	manager, err := session.NewFromConfig(cfg.Session,
		session.WithBackend(b.store),
		session.WithCookieManager(cookies),
		session.WithLogger(log),
		session.WithRecorder(collector),
		session.WithSkipPaths("/favicon.ico"),
	)
	if err != nil {
		_ = b.Close()
		return err
	}
	collector.Track(manager.Store())

	go manager.Watch(ctx)
	if b.run != nil {
		go b.run(ctx)
	}

	checks := []httpserver.Check{{
		Name: "sessions",
		Fn: func(context.Context) error {
			if !manager.Store().Available() {
				return session.ErrStoreUnavailable
			}
			return nil
		},
	}}
	if b.check != nil {
		checks = append(checks, httpserver.Check{Name: cfg.Backend, Fn: b.check})
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, requestid.Middleware, middleware.Recoverer)
	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(log, checks...))
	r.Handle("/metrics", metrics.Handler(reg))
	r.Group(func(r chi.Router) {
		r.Use(manager.Middleware)
		r.HandleFunc("/*", demoHandler)
	})

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithCloser(cfg.Backend, b),
		httpserver.WithCloser("sessions", manager),
	)
	return srv.Run(ctx, r)
}

type demoResponse struct {
	Path      string           `json:"path"`
	Session   *session.Session `json:"session"`
	SessionID string           `json:"sessionId"`
}

func demoHandler(w http.ResponseWriter, r *http.Request) {
	resp := demoResponse{Path: r.URL.Path}

	if h, ok := session.FromContext(r.Context()); ok {
		if r.URL.Path == "/delete" {
			h.Destroy()
		} else {
			h.Session().Set("name", "test")
			resp.Session = h.Session()
			resp.SessionID = h.ID()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
