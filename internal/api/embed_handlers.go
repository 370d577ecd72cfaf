package api

import (
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// handleConfig mints a fresh embed configuration. Query parameters may select
// a report other than the configured one.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := core.EmbedRequest{
		ReportID:    q.Get("reportId"),
		DatasetID:   q.Get("datasetId"),
		WorkspaceID: q.Get("workspaceId"),
	}

	cfg, err := s.embeds.MintConfig(r.Context(), req)
	if err != nil {
		presenter.Err(w, r, err, "Failed to generate embed configuration")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	presenter.JSON(w, r, cfg, http.StatusOK)
}
