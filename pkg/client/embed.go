package client

import (
	"context"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// Config fetches a freshly minted embed configuration for the given report.
// Empty request fields select the gateway's configured report.
func (c *Client) Config(ctx context.Context, req core.EmbedRequest) (*core.EmbedConfig, string, error) {
	ub := c.url().setPath(api.ConfigRoute)
	if req.ReportID != "" {
		ub = ub.addQueryParam("reportId", req.ReportID)
	}
	if req.DatasetID != "" {
		ub = ub.addQueryParam("datasetId", req.DatasetID)
	}
	if req.WorkspaceID != "" {
		ub = ub.addQueryParam("workspaceId", req.WorkspaceID)
	}
	var cfg core.EmbedConfig
	correlation, err := c.get(ctx, ub.build(), &cfg)
	if err != nil {
		return nil, correlation, err
	}
	return &cfg, correlation, nil
}

// FetchConfig fetches the embed configuration of the configured report.
func (c *Client) FetchConfig(ctx context.Context) (*core.EmbedConfig, error) {
	cfg, _, err := c.Config(ctx, core.EmbedRequest{})
	return cfg, err
}
