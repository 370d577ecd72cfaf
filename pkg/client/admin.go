package client

import (
	"context"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Action        string
	Fingerprint   string
	ExportID      string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	if opts.Fingerprint != "" {
		ub = ub.addQueryParam("fingerprint", opts.Fingerprint)
	}
	if opts.ExportID != "" {
		ub = ub.addQueryParam("export_id", opts.ExportID)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// ListActiveTokens retrieves records of embed tokens that have not expired yet.
func (c *Client) ListActiveTokens(ctx context.Context) ([]core.EmbedTokenRecord, string, error) {
	var resp []core.EmbedTokenRecord
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListActiveTokensRoute).
		build(), &resp)
	return resp, correlation, err
}
