package api

import (
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/api/middleware"
	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/issuers"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
	"github.com/Ayaan2907/powerBiChat/internal/service"
	"github.com/Ayaan2907/powerBiChat/internal/tasks"
)

type Server struct {
	embeds      *service.EmbedService
	exports     *service.ExportService
	taskManager *tasks.Manager
	auditor     core.Auditor
	assistant   http.Handler
}

func NewServer(
	embeds *service.EmbedService,
	exports *service.ExportService,
	taskManager *tasks.Manager,
	auditor core.Auditor,
	assistant http.Handler,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &Server{
		embeds:      embeds,
		exports:     exports,
		taskManager: taskManager,
		auditor:     auditor,
		assistant:   assistant,
	}
}

// Routes builds the handler tree. Admin routes are only mounted if admin is non-nil.
func (s *Server) Routes(admin issuers.Verifier) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.Handle("GET "+MetricsRoute, metrics.Handler())

	// gateway routes
	mux.HandleFunc("GET "+ConfigRoute, s.handleConfig)
	mux.HandleFunc("POST "+ExportRoute, s.handleExport)
	mux.HandleFunc("GET "+ExportStatusRoute, s.handleExportStatus)
	mux.HandleFunc("GET "+ExportDownloadRoute, s.handleExportDownload)

	if s.assistant != nil {
		mux.Handle(AssistantParent, s.assistant)
	}

	// admin routes
	if admin != nil {
		adminMux := http.NewServeMux()
		adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
		adminMux.HandleFunc("GET "+ListActiveTokensRoute, s.handleAdminTokens)
		adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
		adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
		adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
		mux.Handle(AdminParent, middleware.AdminAuth(admin)(adminMux))
	}

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
