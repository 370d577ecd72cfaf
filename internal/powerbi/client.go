package powerbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
)

const maxErrorBodyBytes = 64 << 10

// Client talks to the Power BI REST API on behalf of a service identity.
// Every call carries the bearer token it is given; nothing is cached.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResourceRef is an {id} element of a GenerateToken request.
type ResourceRef struct {
	ID string `json:"id"`
}

// MultiResourceTokenRequest is the GenerateToken body used by the direct path.
type MultiResourceTokenRequest struct {
	AccessLevel string        `json:"accessLevel"`
	AllowSaveAs bool          `json:"allowSaveAs"`
	Identities  []any         `json:"identities"`
	Datasets    []ResourceRef `json:"datasets,omitempty"`
	Reports     []ResourceRef `json:"reports"`
}

// DatasetTokenRequest is the GenerateToken body used by the legacy path.
type DatasetTokenRequest struct {
	AccessLevel string `json:"accessLevel"`
	DatasetID   string `json:"datasetId,omitempty"`
}

type GenerateTokenResponse struct {
	Token      string    `json:"token"`
	TokenID    string    `json:"tokenId"`
	Expiration time.Time `json:"expiration"`
}

// GenerateTokenURL addresses the report in its workspace, or in the caller's
// default org scope when workspaceID is empty.
func (c *Client) GenerateTokenURL(workspaceID, reportID string) string {
	if workspaceID == "" {
		return c.baseURL + "/reports/" + url.PathEscape(reportID) + "/GenerateToken"
	}
	return c.reportURL(workspaceID, reportID) + "/GenerateToken"
}

// GenerateToken mints an embed token for a report. body is either a
// MultiResourceTokenRequest or a DatasetTokenRequest.
func (c *Client) GenerateToken(
	ctx context.Context,
	token *core.AccessToken,
	workspaceID, reportID string,
	body any,
) (*GenerateTokenResponse, error) {
	var resp GenerateTokenResponse
	if err := c.doJSON(ctx, token, "GenerateToken", http.MethodPost, c.GenerateTokenURL(workspaceID, reportID), body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &core.UpstreamError{
			Operation:  "GenerateToken",
			StatusCode: http.StatusBadGateway,
			Status:     http.StatusText(http.StatusBadGateway),
			Body:       "response did not contain an embed token",
		}
	}
	return &resp, nil
}

type exportToRequest struct {
	Format                     string         `json:"format"`
	PowerBIReportConfiguration map[string]any `json:"powerBIReportConfiguration"`
}

// exportResponse is the export job resource as returned by ExportTo and GetExportToFileStatus.
type exportResponse struct {
	ID                    string     `json:"id"`
	ReportID              string     `json:"reportId"`
	Status                string     `json:"status"`
	PercentComplete       int        `json:"percentComplete"`
	ResourceLocation      string     `json:"resourceLocation"`
	ResourceFileExtension string     `json:"resourceFileExtension"`
	CreatedDateTime       *time.Time `json:"createdDateTime"`
	LastActionDateTime    *time.Time `json:"lastActionDateTime"`
	ExpirationTime        *time.Time `json:"expirationTime"`
}

func (r exportResponse) job(workspaceID, reportID string) *core.ExportJob {
	if r.ReportID != "" {
		reportID = r.ReportID
	}
	return &core.ExportJob{
		ExportID:              r.ID,
		ReportID:              reportID,
		WorkspaceID:           workspaceID,
		Status:                core.ExportStatus(r.Status),
		PercentComplete:       r.PercentComplete,
		ResourceLocation:      r.ResourceLocation,
		ResourceFileExtension: r.ResourceFileExtension,
		CreatedAt:             r.CreatedDateTime,
		LastActionAt:          r.LastActionDateTime,
		ExpiresAt:             r.ExpirationTime,
	}
}

// ExportTo submits an asynchronous export job.
func (c *Client) ExportTo(
	ctx context.Context,
	token *core.AccessToken,
	workspaceID, reportID string,
	format core.ExportFormat,
) (*core.ExportJob, error) {
	body := exportToRequest{
		Format:                     string(format),
		PowerBIReportConfiguration: map[string]any{},
	}
	var resp exportResponse
	if err := c.doJSON(ctx, token, "ExportTo", http.MethodPost, c.reportURL(workspaceID, reportID)+"/ExportTo", body, &resp); err != nil {
		return nil, err
	}
	job := resp.job(workspaceID, reportID)
	job.Format = format
	return job, nil
}

func (c *Client) GetExportStatus(ctx context.Context, token *core.AccessToken, ref core.ExportRef) (*core.ExportJob, error) {
	var resp exportResponse
	if err := c.doJSON(ctx, token, "GetExportToFileStatus", http.MethodGet, c.exportURL(ref), nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		resp.ID = ref.ExportID
	}
	return resp.job(ref.WorkspaceID, ref.ReportID), nil
}

// GetExportFile opens the artifact of a finished export. The caller must close the body.
func (c *Client) GetExportFile(ctx context.Context, token *core.AccessToken, ref core.ExportRef) (*core.ExportFile, error) {
	req, err := c.newRequest(ctx, token, http.MethodGet, c.exportURL(ref)+"/file", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if err := checkResponse("GetFileOfExportToFile", resp); err != nil {
		return nil, err
	}

	length := resp.ContentLength
	if length < 0 {
		if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
			length = n
		}
	}
	return &core.ExportFile{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      length,
	}, nil
}

func (c *Client) reportURL(workspaceID, reportID string) string {
	return c.baseURL + "/groups/" + url.PathEscape(workspaceID) + "/reports/" + url.PathEscape(reportID)
}

func (c *Client) exportURL(ref core.ExportRef) string {
	return c.reportURL(ref.WorkspaceID, ref.ReportID) + "/exports/" + url.PathEscape(ref.ExportID)
}

func (c *Client) newRequest(ctx context.Context, token *core.AccessToken, method, u string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", token.BearerHeader())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := correlation.FromContext(ctx); id != "" {
		req.Header.Set(correlation.Header, id)
	}
	req.Header.Set("User-Agent", audit.CreateUserAgent(correlation.FromContext(ctx), token.Strategy))
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, token *core.AccessToken, operation, method, u string, payload, out any) error {
	req, err := c.newRequest(ctx, token, method, u, payload)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Debug().
		Str("operation", operation).
		Str("url", u).
		Str("token_fingerprint", token.Fingerprint()).
		Msg("calling reporting API")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(operation, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", operation, err)
	}
	return nil
}

// checkResponse turns a non-2xx answer into an UpstreamError and closes its body.
func checkResponse(operation string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &core.UpstreamError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Body:       string(body),
	}
}
