// Package requestid assigns every request an X-Request-ID and exposes it to
// handlers and loggers.
//
//	log := logger.New(logger.WithContextExtractors(
//	    requestid.LoggerExtractor(),
//	    session.LoggerExtractor(),
//	))
//	r.Use(requestid.Middleware)
//	r.Use(manager.Middleware)
package requestid
