package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/exporter"
	"github.com/Ayaan2907/powerBiChat/internal/lifecycle"
)

var (
	_ exporter.API           = (*Client)(nil)
	_ lifecycle.ConfigSource = (*Client)(nil)
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(correlation.Header, "cid-srv")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
}

func TestFetchConfig(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var gotQuery, gotCorrelation string

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.ConfigRoute, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCorrelation = r.Header.Get(correlation.Header)
		writeJSON(w, http.StatusOK, core.EmbedConfig{
			ReportID:        "r1",
			EmbedURL:        "https://app.powerbi.com/reportEmbed?reportId=r1",
			AccessToken:     "embed",
			TokenExpiration: exp,
		})
	})
	c := newTestClient(t, mux)

	ctx := correlation.WithID(context.Background(), "cid-1")
	cfg, err := c.FetchConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", cfg.ReportID)
	assert.True(t, exp.Equal(cfg.TokenExpiration))
	assert.Empty(t, gotQuery)
	assert.Equal(t, "cid-1", gotCorrelation)

	_, corr, err := c.Config(ctx, core.EmbedRequest{ReportID: "r2"})
	require.NoError(t, err)
	assert.Equal(t, "reportId=r2", gotQuery)
	assert.Equal(t, "cid-srv", corr)
}

func TestErrorResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.ExportStatusRoute, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, presenter.ErrorResponse{
			Error:         "Failed to check export status",
			Message:       "missing required parameters: exportId",
			Kind:          core.KindMissingParameter,
			CorrelationID: "cid-err",
		})
	})
	mux.HandleFunc("GET "+api.ListAuditsRoute, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, presenter.ErrorResponse{Error: "invalid session token"})
	})
	c := newTestClient(t, mux)

	_, err := c.ExportStatus(context.Background(), core.ExportRef{})
	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "cid-err", apiErr.CorrelationID)
	assert.Equal(t, core.KindMissingParameter, core.KindOf(err))

	_, _, err = c.ListAudits(context.Background(), ListAuditsOpts{})
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestExportRoundTrip(t *testing.T) {
	var submitted api.ExportPayload

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.ExportRoute, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&submitted)
		writeJSON(w, http.StatusOK, api.ExportResponse{
			Success:     true,
			ExportID:    "exp-1",
			ReportID:    "r1",
			WorkspaceID: "ws1",
			Format:      core.FormatPNG,
		})
	})
	mux.HandleFunc("GET "+api.ExportStatusRoute, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "exp-1", q.Get("exportId"))
		assert.Equal(t, "r1", q.Get("reportId"))
		assert.Equal(t, "ws1", q.Get("workspaceId"))
		writeJSON(w, http.StatusOK, api.ExportStatusResponse{
			Success:         true,
			ExportID:        "exp-1",
			Status:          core.StatusSucceeded,
			PercentComplete: 100,
			IsCompleted:     true,
		})
	})
	mux.HandleFunc("GET "+api.ExportDownloadRoute, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", `attachment; filename="report.png"`)
		_, _ = w.Write([]byte("png-bytes"))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	sub, err := c.SubmitExport(ctx, core.ExportRequest{Format: core.FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, "PNG", submitted.Format)
	assert.Equal(t, "exp-1", sub.ExportID)

	ref := core.ExportRef{ExportID: sub.ExportID, ReportID: sub.ReportID, WorkspaceID: sub.WorkspaceID}
	job, err := c.ExportStatus(ctx, ref)
	require.NoError(t, err)
	assert.True(t, job.IsCompleted())
	assert.Equal(t, "r1", job.ReportID)

	file, err := c.DownloadExport(ctx, ref)
	require.NoError(t, err)
	defer file.Body.Close()
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, `attachment; filename="report.png"`, file.ContentDisposition)
}

func TestTriggerTask_Path(t *testing.T) {
	var gotPath, gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.TriggerTaskRoute, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.PathValue("name")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusAccepted, api.TriggerTaskResponse{Status: "triggered"})
	})
	c := newTestClient(t, mux, WithAuthToken("session"))

	_, err := c.TriggerTask(context.Background(), "prune-expired-tokens")
	require.NoError(t, err)
	assert.Equal(t, "prune-expired-tokens", gotPath)
	assert.Equal(t, "Bearer session", gotAuth)
}
