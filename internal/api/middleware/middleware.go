package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
)

// quietPaths are only logged when they fail.
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// LoggingMiddleware puts a request-scoped logger into the context, logs the outcome
// and records it in the request metrics, labelled by the matched route pattern.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().
			Str("correlation_id", correlation.FromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		// the mux sets Pattern on the request it receives
		req := r.WithContext(l.WithContext(r.Context()))
		ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, req)

		elapsed := time.Since(start)
		metrics.ObserveRequest(req.Pattern, ww.statusCode, elapsed)

		if _, quiet := quietPaths[r.URL.Path]; quiet && ww.statusCode < http.StatusBadRequest {
			return
		}

		ev := l.Info()
		if ww.statusCode >= http.StatusInternalServerError {
			ev = l.Warn()
		}
		ev.Int("status", ww.statusCode).
			Str("route", req.Pattern).
			Dur("duration", elapsed).
			Msg("request.handled")
	})
}

// RecoverMiddleware turns a handler panic into a 500. http.ErrAbortHandler is re-raised
// so that the server aborts the response as intended.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			log.Error().
				Str("correlation_id", correlation.FromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic.recovered")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal_error","message":"internal server error"}`))
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the flusher of streamed responses.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
