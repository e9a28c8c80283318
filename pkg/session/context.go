package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

type handleContextKey struct{}

// WithHandle adds a session handle to the context
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleContextKey{}, h)
}

// FromContext retrieves the session handle from the context
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleContextKey{}).(*Handle)
	return h, ok && h != nil
}

// MustFromContext retrieves the session handle from the context or panics
func MustFromContext(ctx context.Context) *Handle {
	h, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return h
}

// SessionFromContext returns the live session, or nil when there is no
// handle or the session was destroyed.
func SessionFromContext(ctx context.Context) *Session {
	h, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return h.Session()
}

// LoggerExtractor returns a logger.ContextExtractor that tags records with
// the id of the request's session.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		h, ok := FromContext(ctx)
		if !ok || h.ID() == "" {
			return slog.Attr{}, false
		}
		return logger.SessionID(h.ID()), true
	}
}
