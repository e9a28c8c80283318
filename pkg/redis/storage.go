package redis

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a session backend on top of a go-redis client. Values are
// plain strings with a PX expiry, so Redis drops stale sessions itself.
//
// Every dial the client makes is reported to the functions registered with
// NotifyStatus, which lets a session store notice a lost connection.
type Storage struct {
	db redis.UniversalClient

	mu        sync.RWMutex
	listeners []func(connected bool)
}

// NewStorage wraps client and installs the dial hook.
func NewStorage(client redis.UniversalClient) *Storage {
	s := &Storage{db: client}
	client.AddHook(statusHook{s})
	return s
}

// Get returns nil for empty keys and missing values.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores value until ttl elapses. A zero ttl keeps the key forever.
func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	return s.db.Set(ctx, key, value, ttl).Err()
}

// Destroy removes key. Empty keys are ignored.
func (s *Storage) Destroy(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.Del(ctx, key).Err()
}

// Ping checks the server is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx).Err()
}

// Healthcheck returns a readiness probe. A failed ping is also reported to
// status listeners, so the session store goes unavailable without waiting
// for the next dial.
func (s *Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := s.Ping(ctx); err != nil {
			if ctx.Err() == nil {
				s.report(false)
			}
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}

// NotifyStatus registers fn to be told about every dial outcome.
func (s *Storage) NotifyStatus(fn func(connected bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close terminates the Redis connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Conn returns the underlying Redis client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}

func (s *Storage) report(connected bool) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(connected)
	}
}

// statusHook reports dial results. Commands and pipelines pass through.
type statusHook struct {
	s *Storage
}

func (h statusHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err == nil || ctx.Err() == nil {
			h.s.report(err == nil)
		}
		return conn, err
	}
}

func (h statusHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h statusHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}
