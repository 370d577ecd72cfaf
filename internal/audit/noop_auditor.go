package audit

import "github.com/Ayaan2907/powerBiChat/internal/core"

var _ core.Auditor = NoopAuditor{}

// NoopAuditor drops every entry. It is used when auditing is disabled
// and by local CLI operations.
type NoopAuditor struct{}

func NewNoopAuditor() NoopAuditor {
	return NoopAuditor{}
}

func (NoopAuditor) Log(core.AuditEntry) error { return nil }

func (NoopAuditor) Close() error { return nil }
