package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/cliconfig"
	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/credentials"
	"github.com/Ayaan2907/powerBiChat/internal/embed"
	"github.com/Ayaan2907/powerBiChat/internal/httpclient"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
	"github.com/Ayaan2907/powerBiChat/internal/powerbi"
	"github.com/Ayaan2907/powerBiChat/internal/service"
	"github.com/Ayaan2907/powerBiChat/internal/store"
	"github.com/Ayaan2907/powerBiChat/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the gateway server to connect to.
	RemoteAddr string
}

func NewFactory() *Factory {
	return &Factory{}
}

// GetClient returns a client for remote operations, authenticated if a session is available.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(ServerAddrKey) // prio 2: config/env
	}
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set PBICHAT_SERVER)")
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		} else if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	}

	if envToken := viper.GetString(TokenKey); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token))
}

// bindReportFlags registers the report selection flags shared by embed and export commands.
func (f *Factory) bindReportFlags(flags *pflag.FlagSet, fallback string) {
	flags.String("report", "", "Report ID (default: "+fallback+")")
	flags.String("workspace", "", "Workspace ID (default: "+fallback+")")
}

func (f *Factory) LoadSettings() (*config.Config, error) {
	return loadSettings(cfgFile)
}

// Gateway bundles the server-side components built from the settings.
type Gateway struct {
	Config     *config.Config
	HTTPClient *http.Client
	Strategies *credentials.Registry
	API        *powerbi.Client
	Minter     *embed.Fallback
	Auditor    core.Auditor
	TokenStore core.TokenStore
	Embeds     *service.EmbedService
	Exports    *service.ExportService
}

func (g *Gateway) Defaults() embed.Defaults {
	return embed.Defaults{
		ReportID:    g.Config.PowerBI.ReportID,
		DatasetID:   g.Config.PowerBI.DatasetID,
		WorkspaceID: g.Config.PowerBI.WorkspaceID,
		EmbedURL:    g.Config.PowerBI.EmbedURL,
	}
}

// BuildGateway wires strategies, minters and services. auditor may be nil
// for local CLI operations, which are not audited.
func (f *Factory) BuildGateway(cfg *config.Config, auditor core.Auditor) (*Gateway, error) {
	httpCfg := httpclient.DefaultClientConfig()
	httpCfg.Wrap = metrics.InstrumentTransport
	hc, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("building http client: %w", err)
	}

	strategies, err := credentials.BuildRegistry(cfg.Strategies, credentials.Options{
		Identity:   cfg.PowerBI,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, fmt.Errorf("building strategy registry: %w", err)
	}

	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	g := &Gateway{
		Config:     cfg,
		HTTPClient: hc,
		Strategies: strategies,
		API:        powerbi.NewClient(cfg.PowerBI.APIURL, hc),
		Auditor:    auditor,
		TokenStore: store.NewInMemoryTokenStore(),
	}

	var minters []core.EmbedMinter
	for _, s := range strategies.List() {
		minters = append(minters, embed.NewMinter(s, g.API, g.Defaults()))
	}
	g.Minter = embed.NewFallback(minters...)
	g.Embeds = service.NewEmbedService(g.Minter, g.Auditor, g.TokenStore)
	g.Exports = service.NewExportService(strategies.Primary(), g.API, g.Defaults(), g.Auditor)
	return g, nil
}
