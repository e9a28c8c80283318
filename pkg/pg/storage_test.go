package pg

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	value []byte
	err   error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type call struct {
	sql  string
	args []any
}

// fakeDB records statements and answers from a scripted row.
type fakeDB struct {
	mu      sync.Mutex
	execs   []call
	queries []call
	row     row
	tag     pgconn.CommandTag
	err     error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, call{sql, args})
	return f.tag, f.err
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, call{sql, args})
	return f.row
}

func (f *fakeDB) Ping(context.Context) error {
	return f.err
}

func newTestStorage(db DB) (*Storage, time.Time) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStorage(db)
	s.now = func() time.Time { return now }
	return s, now
}

func TestStorage_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{row: row{value: []byte(`{"ttl":1}`)}}
		s, now := newTestStorage(db)

		got, err := s.Get(ctx, "toa:sess:abc")
		require.NoError(t, err)
		assert.Equal(t, `{"ttl":1}`, string(got))

		require.Len(t, db.queries, 1)
		assert.Equal(t, selectSession, db.queries[0].sql)
		assert.Equal(t, []any{"toa:sess:abc", now}, db.queries[0].args)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStorage(&fakeDB{row: row{err: pgx.ErrNoRows}})

		got, err := s.Get(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("conn closed")
		s, _ := newTestStorage(&fakeDB{row: row{err: boom}})

		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, boom)
	})
}

func TestStorage_Set(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &fakeDB{}
	s, now := newTestStorage(db)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	require.Len(t, db.execs, 2)
	assert.Equal(t, upsertSession, db.execs[0].sql)
	assert.Equal(t, []any{"k", []byte("v"), now.Add(time.Hour)}, db.execs[0].args)
	assert.Equal(t, now.Add(forever), db.execs[1].args[2])
}

func TestStorage_Destroy(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	s, _ := newTestStorage(db)

	require.NoError(t, s.Destroy(context.Background(), "k"))
	require.Len(t, db.execs, 1)
	assert.Equal(t, deleteSession, db.execs[0].sql)
	assert.Equal(t, []any{"k"}, db.execs[0].args)
}

func TestStorage_DeleteExpired(t *testing.T) {
	t.Parallel()
	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 3")}
	s, now := newTestStorage(db)

	n, err := s.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []any{now}, db.execs[0].args)

	db.err = errors.New("boom")
	_, err = s.DeleteExpired(context.Background())
	assert.Error(t, err)
}

func TestStorage_RunCleanup(t *testing.T) {
	t.Parallel()
	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 1")}
	s, _ := newTestStorage(db)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunCleanup(ctx, 5*time.Millisecond, slog.New(slog.DiscardHandler))
		close(done)
	}()

	require.Eventually(t, func() bool {
		db.mu.Lock()
		defer db.mu.Unlock()
		return len(db.execs) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestStorage_Healthcheck(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewStorage(&fakeDB{}).Healthcheck()(context.Background()))

	err := NewStorage(&fakeDB{err: errors.New("down")}).Healthcheck()(context.Background())
	assert.ErrorIs(t, err, ErrHealthcheckFailed)
}

func TestConnect_EmptyConnectionString(t *testing.T) {
	t.Parallel()
	_, err := Connect(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrEmptyConnectionString)
}

func TestConnect_BadConnectionString(t *testing.T) {
	t.Parallel()
	_, err := Connect(context.Background(), Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, ErrFailedToParseDBConfig)
}

func TestMigrations_Embedded(t *testing.T) {
	t.Parallel()
	data, err := migrations.ReadFile("migrations/00001_create_sessions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS sessions")
}
