// Package session keeps server-side session state addressed by an opaque id
// carried in a client cookie.
//
// The cookie holds "<id>.<hash>", where hash is Digest of the stored content
// bound to the id. On every in-scope request the Manager reads the cookie,
// fetches the session from the Store and checks the hash. A missing entry, an
// undecodable one or a hash mismatch all collapse to "no session", and a
// fresh session with a new id is created instead. Nothing about the cause is
// reported to the caller.
//
// At the end of the request Finalize picks one of three outcomes:
//
//   - the session was destroyed or its TTL is not positive: the cookie is
//     cleared and the store entry removed (nothing happens for a session
//     that was created and destroyed in the same request);
//   - the content hash is unchanged and rolling is off: no I/O at all;
//   - otherwise the entry is written and the cookie refreshed.
//
// # Storage
//
// Any key-value engine with per-entry expiry can back the Store by
// implementing Backend. Backends that implement StatusNotifier or Pinger
// feed the store's availability flag; while the backend is down Load fails
// with ErrStoreUnavailable. MemoryStore is the in-process default. Redis,
// PostgreSQL and MongoDB backends live in sibling packages.
//
// # Usage
//
//	cookies, _ := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	sessions, err := session.New(
//	    session.WithCookieManager(cookies),
//	    session.WithBackend(redis.NewStorage(client)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	r := chi.NewRouter()
//	r.Use(sessions.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    h := session.MustFromContext(r.Context())
//	    h.Session().Set("name", "test")
//	})
//	r.Get("/logout", func(w http.ResponseWriter, r *http.Request) {
//	    session.MustFromContext(r.Context()).Destroy()
//	})
//
// Middleware buffers the handler's response so the cookie can be written
// after the handler has returned. Handlers that stream should call Load and
// Finalize themselves and finalize before writing the body.
package session
