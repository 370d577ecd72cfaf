package audit

import (
	"fmt"

	"github.com/Ayaan2907/powerBiChat/internal/buildinfo"
	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// Action names recorded in the audit log.
const (
	ActionConfigMint     = "config.mint"
	ActionExportSubmit   = "export.submit"
	ActionExportStatus   = "export.status"
	ActionExportDownload = "export.download"
)

func CreateUserAgent(correlationID, strategy string) string {
	return fmt.Sprintf("pbichat/%s (correlation_id=%s; strategy=%s)",
		buildinfo.Version, correlationID, strategy)
}

// New builds the auditor described by cfg. A disabled audit config yields a NoopAuditor.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "", "memory":
		return NewInMemoryAuditor(), nil
	case "file":
		return NewFileAuditor(cfg.Path)
	case "noop":
		return NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}
