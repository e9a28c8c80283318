// Package redis connects to Redis and exposes it as a session backend.
//
// Connect retries until the server answers. Storage implements the session
// Backend contract (Get, Set with PX expiry, Destroy) plus Ping and
// NotifyStatus, so a session store tracks the connection state:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sessions, err := session.New(
//	    session.WithBackend(redis.NewStorage(client)),
//	    session.WithCookieManager(cookies),
//	)
//
// Dial failures mark the store unavailable. Since an unavailable store is
// not queried, run Store.Watch so a ping notices when Redis is back.
//
// Storage.Healthcheck returns a probe for readiness endpoints.
//
// Config fields are read from REDIS_* environment variables.
package redis
