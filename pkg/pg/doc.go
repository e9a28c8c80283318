// Package pg stores sessions in PostgreSQL through pgx/v5.
//
// Connect opens a *pgxpool.Pool, retrying until the database answers.
// Migrate applies the embedded goose migrations that create the sessions
// table. Storage implements the session Backend contract on that table:
// rows carry an expires_at column, Get ignores expired rows and
// DeleteExpired (or RunCleanup in the background) removes them.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
//	storage := pg.NewStorage(pool)
//	go storage.RunCleanup(ctx, cfg.CleanupInterval, log)
//
//	sessions, err := session.New(session.WithBackend(storage), ...)
//
// Storage implements Ping, so session.Store.Watch can track availability.
// Storage.Healthcheck returns a probe for readiness endpoints.
package pg
