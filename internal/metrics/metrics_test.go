package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMint(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		err      error
		result   string
	}{
		{name: "success", strategy: "test-direct", result: ResultSuccess},
		{name: "failure", strategy: "test-legacy", err: errors.New("denied"), result: ResultFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(EmbedMintTotal.WithLabelValues(tt.strategy, tt.result))
			RecordMint(tt.strategy, tt.err)
			after := testutil.ToFloat64(EmbedMintTotal.WithLabelValues(tt.strategy, tt.result))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(EmbedFallbackTotal)
	RecordFallback()
	assert.Equal(t, before+1, testutil.ToFloat64(EmbedFallbackTotal))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "404"))
	ObserveRequest("", http.StatusNotFound, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "404")))

	before = testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET /config", "200"))
	ObserveRequest("GET /config", http.StatusOK, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET /config", "200")))
}

func TestInstrumentTransportAndHandler(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer upstream.Close()

	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("202", "get"))

	c := &http.Client{Transport: InstrumentTransport(http.DefaultTransport)}
	resp, err := c.Get(upstream.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("202", "get")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "pbichat_upstream_requests_total"))
}
