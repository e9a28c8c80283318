package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/mongo"
	"github.com/dmitrymomot/sessionkit/pkg/pg"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// backend is a session backend plus what the process needs to run it.
type backend struct {
	store   session.Backend
	check   func(context.Context) error
	run     func(context.Context)
	closeFn func() error
}

func (b backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

func openBackend(ctx context.Context, name string, log *slog.Logger) (backend, error) {
	log = log.With(logger.Backend(name))

	switch name {
	case "memory", "":
		store := session.NewMemoryStore(session.WithCleanupInterval(time.Minute))
		return backend{store: store, closeFn: store.Close}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return backend{}, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		storage := redis.NewStorage(client)
		return backend{
			store:   storage,
			check:   storage.Healthcheck(),
			closeFn: storage.Close,
		}, nil

	case "pg", "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return backend{}, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		storage := pg.NewStorage(pool)
		return backend{
			store: storage,
			check: storage.Healthcheck(),
			run: func(ctx context.Context) {
				storage.RunCleanup(ctx, cfg.CleanupInterval, log)
			},
			closeFn: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case "mongo", "mongodb":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return backend{}, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		storage := mongo.NewStorage(db.Collection(cfg.Collection))
		if err := storage.EnsureIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return backend{}, err
		}
		return backend{
			store: storage,
			check: storage.Healthcheck(),
			closeFn: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return db.Client().Disconnect(ctx)
			},
		}, nil
	}

	return backend{}, fmt.Errorf("%w: unknown backend %q", errUnknownBackend, name)
}

var errUnknownBackend = errors.New("sessiondemo: unknown backend")
