// Package logger builds *slog.Logger instances with functional options,
// consistent attribute helpers and transparent injection of values stored in
// context.Context.
//
// New picks a JSON or text handler and wraps it with LogHandlerDecorator,
// which runs registered ContextExtractor callbacks on every record. That is
// how request and session ids end up on log lines without being passed
// around explicitly.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("development", "sessiondemo"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.InfoContext(ctx, "session persisted",
//	    logger.SessionID(h.ID()),
//	    logger.Duration(time.Since(start)),
//	)
//
// Config and NewFromConfig read APP_ENV, APP_NAME and LOG_LEVEL through the
// config package.
//
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Info("done", logger.Error(err))
//
// needs no nil check.
package logger
