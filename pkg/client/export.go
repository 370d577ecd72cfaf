package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

func (c *Client) SubmitExport(ctx context.Context, req core.ExportRequest) (*core.ExportSubmission, error) {
	payload := api.ExportPayload{
		Format:      string(req.Format),
		ReportID:    req.ReportID,
		WorkspaceID: req.WorkspaceID,
	}
	var resp api.ExportResponse
	if _, err := c.post(ctx, c.url().setPath(api.ExportRoute).build(), payload, &resp); err != nil {
		return nil, err
	}
	return &core.ExportSubmission{
		ExportID:    resp.ExportID,
		ReportID:    resp.ReportID,
		WorkspaceID: resp.WorkspaceID,
		Format:      resp.Format,
	}, nil
}

func (c *Client) ExportStatus(ctx context.Context, ref core.ExportRef) (*core.ExportJob, error) {
	var resp api.ExportStatusResponse
	if _, err := c.get(ctx, c.exportURL(api.ExportStatusRoute, ref), &resp); err != nil {
		return nil, err
	}
	job := resp.Job()
	job.ReportID, job.WorkspaceID = ref.ReportID, ref.WorkspaceID
	return job, nil
}

// DownloadExport streams the artifact of a finished export. The caller must close the body.
func (c *Client) DownloadExport(ctx context.Context, ref core.ExportRef) (*core.ExportFile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.exportURL(api.ExportDownloadRoute, ref), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer func(body io.ReadCloser) {
			_ = body.Close()
		}(resp.Body)
		return nil, parseErrorResponse(resp)
	}
	return &core.ExportFile{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}

func (c *Client) exportURL(route string, ref core.ExportRef) string {
	return c.url().
		setPath(route).
		addQueryParam("exportId", ref.ExportID).
		addQueryParam("reportId", ref.ReportID).
		addQueryParam("workspaceId", ref.WorkspaceID).
		build()
}
