package api

import (
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/api/presenter"
	"github.com/Ayaan2907/powerBiChat/internal/buildinfo"
)

// AboutResponse is the build info plus the optional features this gateway serves.
type AboutResponse struct {
	buildinfo.Info
	AssistantRelay bool `json:"assistant_relay"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, AboutResponse{
		Info:           buildinfo.GetBuildInfo(),
		AssistantRelay: s.assistant != nil,
	}, http.StatusOK)
}
