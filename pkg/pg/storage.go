package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the storage uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	selectSession = `SELECT value FROM sessions WHERE key = $1 AND expires_at > $2`
	upsertSession = `INSERT INTO sessions (key, value, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	deleteSession = `DELETE FROM sessions WHERE key = $1`
	deleteExpired = `DELETE FROM sessions WHERE expires_at <= $1`

	forever = 100 * 365 * 24 * time.Hour
)

// Storage keeps sessions in the sessions table created by Migrate.
// Expired rows are invisible to Get and removed by DeleteExpired.
type Storage struct {
	db  DB
	now func() time.Time
}

// NewStorage creates a session backend over db, usually a *pgxpool.Pool.
func NewStorage(db DB) *Storage {
	return &Storage{db: db, now: time.Now}
}

// Get returns the live value for key, or nil when missing or expired.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, selectSession, key, s.now()).Scan(&value)
	if IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set inserts or replaces key. A non-positive ttl keeps the row for a
// century.
func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = forever
	}
	_, err := s.db.Exec(ctx, upsertSession, key, value, s.now().Add(ttl))
	return err
}

// Destroy deletes key.
func (s *Storage) Destroy(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, deleteSession, key)
	return err
}

// Ping checks the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Healthcheck returns a readiness probe that pings the database.
func (s *Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := s.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (s *Storage) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteExpired, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunCleanup calls DeleteExpired every interval until ctx is done.
func (s *Storage) RunCleanup(ctx context.Context, interval time.Duration, log logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "Failed to delete expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "Deleted expired sessions", "count", n)
			}
		}
	}
}
