package middleware

import (
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/correlation"
)

// CorrelationIDMiddleware accepts the caller's correlation ID or generates one,
// and echoes it in the response.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlation.Header)
		if id == "" {
			id = correlation.NewID()
		}
		w.Header().Set(correlation.Header, id)

		ctx := correlation.WithID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
