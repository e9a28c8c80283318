package session

import (
	"bytes"
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// ErrorHandler answers requests whose session could not be loaded or saved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		log.ErrorContext(r.Context(), "session handling failed",
			logger.Path(r.URL.Path),
			logger.Error(err),
		)

		status := http.StatusInternalServerError
		if errors.Is(err, ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, http.StatusText(status), status)
	}
}

// Middleware loads the session for in-scope requests, exposes its handle
// through the request context and finalizes it once the handler returns.
// The handler's response is buffered so the session cookie can still be
// written; it reaches the client after Finalize. Streaming handlers cannot
// flush from inside the middleware and belong outside the session scope.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); ok || !m.MatchScope(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		h, err := m.Load(r.Context(), r)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		headers := w.Header().Clone()
		bw := &bufferedWriter{ResponseWriter: w}
		next.ServeHTTP(bw, r.WithContext(WithHandle(r.Context(), h)))

		if err := m.Finalize(r.Context(), bw, h); err != nil {
			// drop what the handler set; the error response goes out alone
			clear(w.Header())
			maps.Copy(w.Header(), headers)
			m.errorHandler(w, r, err)
			return
		}

		bw.flush()
	})
}

// bufferedWriter holds the status and body back until flush. Headers go
// straight to the wrapped writer's map, which is not sent before flush.
type bufferedWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

// FlushError keeps http.ResponseController from flushing the wrapped writer
// ahead of Finalize.
func (w *bufferedWriter) FlushError() error {
	return ErrFlushUnsupported
}

// Unwrap exposes the wrapped writer to http.ResponseController, for
// deadlines and hijacking.
func (w *bufferedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the buffered status, zero if nothing was written yet.
func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) flush() {
	if w.status == 0 && w.body.Len() == 0 {
		return
	}
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.status)
	_, _ = w.ResponseWriter.Write(w.body.Bytes())
}
