// Package sessionkit is the root of a cookie-addressed, server-side session
// library for net/http.
//
// A request carries only an opaque session id in a (signed) cookie. The
// session data lives in a pluggable store and is loaded when a request
// enters the cookie path, then persisted, skipped or destroyed once the
// handler returns, depending on whether it changed.
//
// Packages:
//
//   - pkg/session: id generation, the integrity hash, the store adapter,
//     the Manager lifecycle and its middleware, and an in-memory backend.
//   - pkg/cookie: signed cookie encoding with secret rotation.
//   - pkg/redis, pkg/pg, pkg/mongo: network session backends.
//   - pkg/metrics: Prometheus recorder for session events.
//   - pkg/config, pkg/logger, pkg/httpserver, pkg/requestid: ambient stack.
//
// Minimal setup:
//
//	cookies, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	if err != nil {
//	    return err
//	}
//	manager, err := session.New(session.WithCookieManager(cookies))
//	if err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", manager.Middleware(mux))
//
// Handlers reach the session through the request context:
//
//	sess := session.SessionFromContext(r.Context())
//	sess.Set("user_id", 42)
//
// See cmd/sessiondemo for a full program with backend selection, metrics and
// graceful shutdown.
package sessionkit
