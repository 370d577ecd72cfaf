package embed

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/credentials"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
	"github.com/Ayaan2907/powerBiChat/internal/powerbi"
)

const (
	accessLevelView = "View"

	// DefaultEmbedHost is used to build an embed URL when none is configured.
	DefaultEmbedHost = "https://app.powerbi.com/reportEmbed"
)

// Shape selects the GenerateToken request body.
type Shape int

const (
	// ShapeMultiResource sends datasets and reports lists; requires a workspace.
	ShapeMultiResource Shape = iota
	// ShapeDataset sends a single datasetId; requires a configured embed URL and dataset.
	ShapeDataset
)

// Defaults are the configured report coordinates used when a request leaves them empty.
type Defaults struct {
	ReportID    string
	DatasetID   string
	WorkspaceID string
	EmbedURL    string
}

// Minter mints embed tokens with one credential strategy.
type Minter struct {
	strategy core.CredentialStrategy
	api      *powerbi.Client
	defaults Defaults
	shape    Shape
}

var _ core.EmbedMinter = (*Minter)(nil)

// NewMinter binds a strategy to the reporting API. Legacy strategies use the
// single-dataset body, every other strategy the multi-resource body.
func NewMinter(strategy core.CredentialStrategy, api *powerbi.Client, defaults Defaults) *Minter {
	shape := ShapeMultiResource
	if strategy.Type() == credentials.TypeLegacy {
		shape = ShapeDataset
	}
	return &Minter{
		strategy: strategy,
		api:      api,
		defaults: defaults,
		shape:    shape,
	}
}

func (m *Minter) Name() string {
	return m.strategy.Name()
}

func (m *Minter) Shape() Shape {
	return m.shape
}

func (m *Minter) MintEmbedToken(ctx context.Context, req core.EmbedRequest) (*core.EmbedConfig, error) {
	cfg, err := m.mint(ctx, req)
	metrics.RecordMint(m.Name(), err)
	return cfg, err
}

func (m *Minter) mint(ctx context.Context, req core.EmbedRequest) (*core.EmbedConfig, error) {
	reportID := firstNonEmpty(req.ReportID, m.defaults.ReportID)
	workspaceID := firstNonEmpty(req.WorkspaceID, m.defaults.WorkspaceID)
	datasetID := firstNonEmpty(req.DatasetID, m.defaults.DatasetID)

	var body any
	embedURL := m.defaults.EmbedURL

	switch m.shape {
	case ShapeDataset:
		var missing []string
		if reportID == "" {
			missing = append(missing, "POWERBI_REPORT_ID")
		}
		if embedURL == "" {
			missing = append(missing, "POWERBI_EMBED_URL")
		}
		if datasetID == "" {
			missing = append(missing, "POWERBI_DATASET_ID")
		}
		if len(missing) > 0 {
			return nil, &core.ConfigurationError{Missing: missing}
		}
		body = powerbi.DatasetTokenRequest{
			AccessLevel: accessLevelView,
			DatasetID:   datasetID,
		}
	default:
		var missing []string
		if reportID == "" {
			missing = append(missing, "POWERBI_REPORT_ID")
		}
		if workspaceID == "" {
			missing = append(missing, "POWERBI_WORKSPACE_ID")
		}
		if len(missing) > 0 {
			return nil, &core.ConfigurationError{Missing: missing}
		}
		r := powerbi.MultiResourceTokenRequest{
			AccessLevel: accessLevelView,
			AllowSaveAs: false,
			Identities:  []any{},
			Reports:     []powerbi.ResourceRef{{ID: reportID}},
		}
		if datasetID != "" {
			r.Datasets = []powerbi.ResourceRef{{ID: datasetID}}
		}
		body = r
		if embedURL == "" {
			embedURL = BuildEmbedURL(reportID, workspaceID)
		}
	}

	token, err := m.strategy.AcquireAccessToken(ctx)
	metrics.RecordCredentialAcquire(m.strategy.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}

	resp, err := m.api.GenerateToken(ctx, token, workspaceID, reportID, body)
	if err != nil {
		return nil, fmt.Errorf("generating embed token: %w", err)
	}

	cfg := &core.EmbedConfig{
		ReportID:        reportID,
		EmbedURL:        embedURL,
		AccessToken:     resp.Token,
		TokenExpiration: resp.Expiration,
		WorkspaceID:     workspaceID,
		DatasetID:       datasetID,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Debug().
		Str("strategy", m.Name()).
		Str("report_id", reportID).
		Str("token_fingerprint", core.Fingerprint(resp.Token)).
		Time("expires_at", resp.Expiration).
		Msg("minted embed token")
	return cfg, nil
}

// BuildEmbedURL returns the default embed URL of a report in a workspace.
func BuildEmbedURL(reportID, workspaceID string) string {
	q := url.Values{}
	q.Set("reportId", reportID)
	if workspaceID != "" {
		q.Set("groupId", workspaceID)
	}
	return DefaultEmbedHost + "?" + q.Encode()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
