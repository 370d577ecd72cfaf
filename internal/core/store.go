package core

import (
	"context"
	"time"
)

// EmbedTokenRecord describes an embed token handed out by the gateway.
// The token itself is never stored, only its fingerprint.
type EmbedTokenRecord struct {
	// CorrelationID is the ID of the request that minted the token.
	CorrelationID string `json:"correlation_id"`

	ReportID    string `json:"report_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	DatasetID   string `json:"dataset_id,omitempty"`

	// Strategy is the credential strategy used for minting.
	Strategy string `json:"strategy"`

	Fingerprint string    `json:"fingerprint"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenStore keeps records of issued embed tokens.
type TokenStore interface {
	// Save records a newly minted token
	Save(ctx context.Context, rec EmbedTokenRecord) error

	// ListActive returns records that have not expired yet
	ListActive(ctx context.Context) ([]EmbedTokenRecord, error)

	// DeleteExpired drops expired records and returns how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
