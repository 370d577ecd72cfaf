package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/embed"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
	"github.com/Ayaan2907/powerBiChat/internal/powerbi"
)

const (
	// FallbackContentType is sent when the reporting API omits a content type.
	FallbackContentType = "application/octet-stream"

	opSubmit   = "submit"
	opStatus   = "status"
	opDownload = "download"
)

// ExportService proxies export jobs to the reporting API.
// Each call acquires a fresh access token from a single strategy; there is no fallback.
type ExportService struct {
	strategy core.CredentialStrategy
	api      *powerbi.Client
	defaults embed.Defaults
	auditor  core.Auditor
	now      func() time.Time
}

func NewExportService(strategy core.CredentialStrategy, api *powerbi.Client, defaults embed.Defaults, auditor core.Auditor) *ExportService {
	return &ExportService{
		strategy: strategy,
		api:      api,
		defaults: defaults,
		auditor:  auditor,
		now:      time.Now,
	}
}

func (s *ExportService) Submit(ctx context.Context, req core.ExportRequest) (sub *core.ExportSubmission, err error) {
	entry := s.begin(ctx, audit.ActionExportSubmit)
	defer func() { s.finish(ctx, entry, opSubmit, err) }()

	format := req.Format
	if format == "" {
		format = core.FormatPDF
	}
	entry.Format = string(format)

	reportID := firstNonEmpty(req.ReportID, s.defaults.ReportID)
	workspaceID := firstNonEmpty(req.WorkspaceID, s.defaults.WorkspaceID)
	entry.ReportID, entry.WorkspaceID = reportID, workspaceID

	var missing []string
	if reportID == "" {
		missing = append(missing, "reportId")
	}
	if workspaceID == "" {
		missing = append(missing, "workspaceId")
	}
	if len(missing) > 0 {
		return nil, &core.MissingParameterError{Params: missing}
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.api.ExportTo(ctx, token, workspaceID, reportID, format)
	if err != nil {
		return nil, fmt.Errorf("submitting export: %w", err)
	}
	entry.ExportID = job.ExportID

	log.Ctx(ctx).Info().
		Str("export_id", job.ExportID).
		Str("report_id", reportID).
		Str("format", string(format)).
		Msg("export job created")

	return &core.ExportSubmission{
		ExportID:    job.ExportID,
		ReportID:    reportID,
		WorkspaceID: workspaceID,
		Format:      format,
	}, nil
}

func (s *ExportService) Status(ctx context.Context, ref core.ExportRef) (job *core.ExportJob, err error) {
	entry := s.begin(ctx, audit.ActionExportStatus)
	entry.ExportID, entry.ReportID, entry.WorkspaceID = ref.ExportID, ref.ReportID, ref.WorkspaceID
	defer func() { s.finish(ctx, entry, opStatus, err) }()

	if err := ref.Validate(); err != nil {
		return nil, err
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	job, err = s.api.GetExportStatus(ctx, token, ref)
	if err != nil {
		return nil, fmt.Errorf("checking export status: %w", err)
	}
	return job, nil
}

// Download opens the export artifact. The caller must close the body.
func (s *ExportService) Download(ctx context.Context, ref core.ExportRef) (file *core.ExportFile, err error) {
	entry := s.begin(ctx, audit.ActionExportDownload)
	entry.ExportID, entry.ReportID, entry.WorkspaceID = ref.ExportID, ref.ReportID, ref.WorkspaceID
	defer func() { s.finish(ctx, entry, opDownload, err) }()

	if err := ref.Validate(); err != nil {
		return nil, err
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	file, err = s.api.GetExportFile(ctx, token, ref)
	if err != nil {
		return nil, fmt.Errorf("downloading export: %w", err)
	}
	if file.ContentType == "" {
		file.ContentType = FallbackContentType
	}
	if file.ContentDisposition == "" {
		file.ContentDisposition = fmt.Sprintf(`attachment; filename="report-%s"`, ref.ExportID)
	}
	return file, nil
}

func (s *ExportService) token(ctx context.Context) (*core.AccessToken, error) {
	token, err := s.strategy.AcquireAccessToken(ctx)
	metrics.RecordCredentialAcquire(s.strategy.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}
	return token, nil
}

func (s *ExportService) begin(ctx context.Context, action string) *core.AuditEntry {
	return &core.AuditEntry{
		ID:       correlation.FromContext(ctx),
		Time:     s.now(),
		Action:   action,
		Strategy: s.strategy.Name(),
	}
}

func (s *ExportService) finish(ctx context.Context, entry *core.AuditEntry, op string, err error) {
	metrics.RecordExport(op, err)
	entry.Success = err == nil
	if err != nil {
		entry.Kind = core.KindOf(err)
		entry.Error = err.Error()
		log.Ctx(ctx).Warn().Err(err).Str("operation", op).Str("export_id", entry.ExportID).Msg("export operation failed")
	}
	if logErr := s.auditor.Log(*entry); logErr != nil {
		log.Ctx(ctx).Error().Err(logErr).Msg("failed to write audit log entry for export")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
