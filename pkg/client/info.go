package client

import (
	"context"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/buildinfo"
)

// Info returns version and commit of the gateway. It needs no session.
func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().setPath(api.AboutRoute).build(), &info)
	if err != nil {
		return nil, correlation, err
	}
	return &info, correlation, nil
}
