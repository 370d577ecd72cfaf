package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// handleExport submits a new export job.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var payload ExportPayload
	if err := DecodePayload(r, &payload, true /* allow empty */); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to decode export request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	format, err := core.ParseExportFormat(payload.Format)
	if err != nil {
		presenter.Err(w, r, err, "Invalid export format")
		return
	}

	sub, err := s.exports.Submit(r.Context(), core.ExportRequest{
		Format:      format,
		ReportID:    payload.ReportID,
		WorkspaceID: payload.WorkspaceID,
	})
	if err != nil {
		presenter.Err(w, r, err, "Export failed")
		return
	}

	presenter.JSON(w, r, ExportResponse{
		Success:     true,
		ExportID:    sub.ExportID,
		ReportID:    sub.ReportID,
		WorkspaceID: sub.WorkspaceID,
		Format:      sub.Format,
		Message:     "Export job started successfully",
	}, http.StatusOK)
}

// handleExportStatus reports the state of an export job.
func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.exports.Status(r.Context(), exportRef(r))
	if err != nil {
		presenter.Err(w, r, err, "Failed to check export status")
		return
	}
	presenter.JSON(w, r, newExportStatusResponse(job), http.StatusOK)
}

// handleExportDownload streams the export artifact with the upstream headers.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, err := s.exports.Download(ctx, exportRef(r))
	if err != nil {
		presenter.Err(w, r, err, "Failed to download export")
		return
	}
	defer func() {
		_ = file.Body.Close()
	}()

	h := w.Header()
	h.Set("Content-Type", file.ContentType)
	h.Set("Content-Disposition", file.ContentDisposition)
	if file.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(file.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file.Body); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("export download interrupted")
	}
}

func exportRef(r *http.Request) core.ExportRef {
	q := r.URL.Query()
	return core.ExportRef{
		ExportID:    q.Get("exportId"),
		ReportID:    q.Get("reportId"),
		WorkspaceID: q.Get("workspaceId"),
	}
}
