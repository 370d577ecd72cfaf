package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "config.mint", "export.submit")
	Action string `json:"action"`

	// Strategy is the credential strategy that served the request
	Strategy string `json:"strategy,omitempty"`

	// FallbackUsed is set when the primary strategy failed and a later one was used
	FallbackUsed bool `json:"fallback_used,omitempty"`

	ReportID    string `json:"report_id,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	ExportID    string `json:"export_id,omitempty"`
	Format      string `json:"format,omitempty"`

	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`

	// TokenFingerprint identifies the minted embed token without revealing it
	TokenFingerprint string    `json:"token_fingerprint,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that can serve their entries back.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
