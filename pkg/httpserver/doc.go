// Package httpserver runs an http.Server with graceful shutdown.
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout and closes the
// resources registered with WithCloser, such as a session manager that owns
// its backend connection:
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithCloser("sessions", manager),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// Liveness and Readiness build probe handlers; readiness checks run with the
// request context and answer 503 when a dependency is down.
package httpserver
