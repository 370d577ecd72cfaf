package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/issuers"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	h := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(correlation.Header))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlation.Header, "caller-id")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "caller-id", seen)
		assert.Equal(t, "caller-id", rec.Header().Get(correlation.Header))
	})
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestRecoverMiddleware_AbortHandler(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingMiddleware_RouteMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := LoggingMiddleware(mux)

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET /things/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStatusWriter_KeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = w.Write([]byte("body"))
	w.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.Equal(t, rec, w.Unwrap())
}

type stubVerifier struct {
	principal *issuers.Principal
	err       error
}

func (stubVerifier) Name() string { return "stub" }

func (s stubVerifier) Verify(context.Context, string) (*issuers.Principal, error) {
	return s.principal, s.err
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		status   int
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "rejected", header: "Bearer x", verifier: stubVerifier{err: errors.New("bad signature")}, status: http.StatusUnauthorized},
		{name: "missing role", header: "Bearer x", verifier: stubVerifier{principal: &issuers.Principal{Subject: "bob", Roles: []string{"reader"}}}, status: http.StatusForbidden},
		{name: "admin", header: "Bearer x", verifier: stubVerifier{principal: &issuers.Principal{Subject: "alice", Roles: []string{issuers.AdminRole}}}, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminAuth(tt.verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/audit", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
