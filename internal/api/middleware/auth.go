package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/issuers"
)

// AdminAuth requires a bearer token accepted by verifier that carries the admin role.
func AdminAuth(verifier issuers.Verifier) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			if tokenStr == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.Verify(r.Context(), tokenStr)
			if err != nil {
				log.Ctx(r.Context()).Debug().Err(err).Msg("admin session rejected")
				presenter.Error(w, r, "invalid session token", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(principal.Roles, issuers.AdminRole) {
				log.Ctx(r.Context()).Warn().
					Str("subject", principal.Subject).
					Str("issuer", principal.Issuer).
					Msg("admin route requested without admin role")
				presenter.Error(w, r, "insufficient privileges", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
