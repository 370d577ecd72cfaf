package assistant

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
)

func newRelay(t *testing.T, backend string, maxBody int64) *Relay {
	t.Helper()
	rl, err := New(config.AssistantConfig{BackendURL: backend, MaxBodyBytes: maxBody}, nil)
	require.NoError(t, err)
	return rl
}

func TestRelay_ForwardsAllowlistedRoute(t *testing.T) {
	var gotPath, gotBody, gotCorrelation string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotCorrelation = r.Header.Get(correlation.Header)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: hello\n\n"))
	}))
	defer backend.Close()

	rl := newRelay(t, backend.URL, 0)

	req := httptest.NewRequest(http.MethodPost, "/assistant/analyze", strings.NewReader(`{"message":"hi"}`))
	req = req.WithContext(correlation.WithID(req.Context(), "corr-1"))
	rec := httptest.NewRecorder()
	rl.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/analyze", gotPath)
	assert.Equal(t, `{"message":"hi"}`, gotBody)
	assert.Equal(t, "corr-1", gotCorrelation)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: hello\n\n", rec.Body.String())
}

func TestRelay_RejectsRequests(t *testing.T) {
	var hits int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer backend.Close()

	rl := newRelay(t, backend.URL, 8)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown route", http.MethodPost, "/assistant/admin", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/assistant/analyze", "", http.StatusMethodNotAllowed},
		{"body too large", http.MethodPost, "/assistant/transcribe", "0123456789", http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			rl.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Zero(t, hits)
}

func TestRelay_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	rl := newRelay(t, url, 0)

	req := httptest.NewRequest(http.MethodGet, "/assistant/health", nil)
	rec := httptest.NewRecorder()
	rl.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "assistant backend unavailable")
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(config.AssistantConfig{}, nil)
	assert.Error(t, err)

	_, err = New(config.AssistantConfig{BackendURL: "ftp://example.com"}, nil)
	assert.Error(t, err)
}
