package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Ayaan2907/powerBiChat/internal/config"
)

// settingsEnv maps settings keys to the environment variables that override them.
var settingsEnv = map[string]string{
	"powerbi.client_id":      "POWERBI_CLIENT_ID",
	"powerbi.client_secret":  "POWERBI_CLIENT_SECRET",
	"powerbi.tenant_id":      "POWERBI_TENANT_ID",
	"powerbi.scope":          "POWERBI_SCOPE",
	"powerbi.report_id":      "POWERBI_REPORT_ID",
	"powerbi.embed_url":      "POWERBI_EMBED_URL",
	"powerbi.dataset_id":     "POWERBI_DATASET_ID",
	"powerbi.workspace_id":   "POWERBI_WORKSPACE_ID",
	"powerbi.authority_host": "POWERBI_AUTHORITY_HOST",
	"powerbi.api_url":        "POWERBI_API_URL",
	"assistant.backend_url":  "AI_BACKEND_URL",
	"admin.signing_key":      "POWERBI_ADMIN_SIGNING_KEY",
	"admin.issuer":           "POWERBI_ADMIN_ISSUER",
	"admin.oidc.issuer_url":  "POWERBI_ADMIN_OIDC_ISSUER_URL",
	"admin.oidc.client_id":   "POWERBI_ADMIN_OIDC_CLIENT_ID",
	"audit.path":             "PBICHAT_AUDIT_PATH",
	"tasks.prune_interval":   "PBICHAT_PRUNE_INTERVAL",
}

func bindSettingsEnv() {
	for key, env := range settingsEnv {
		_ = viper.BindEnv(key, env)
	}
}

// loadSettings reads the settings file, if any, and applies environment overrides.
func loadSettings(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := func(key string, dest *string) {
		if v := viper.GetString(key); v != "" {
			*dest = v
		}
	}
	set("powerbi.client_id", &cfg.PowerBI.ClientID)
	set("powerbi.client_secret", &cfg.PowerBI.ClientSecret)
	set("powerbi.tenant_id", &cfg.PowerBI.TenantID)
	set("powerbi.scope", &cfg.PowerBI.Scope)
	set("powerbi.report_id", &cfg.PowerBI.ReportID)
	set("powerbi.embed_url", &cfg.PowerBI.EmbedURL)
	set("powerbi.dataset_id", &cfg.PowerBI.DatasetID)
	set("powerbi.workspace_id", &cfg.PowerBI.WorkspaceID)
	set("powerbi.authority_host", &cfg.PowerBI.AuthorityHost)
	set("powerbi.api_url", &cfg.PowerBI.APIURL)
	set("assistant.backend_url", &cfg.Assistant.BackendURL)
	set("admin.signing_key", &cfg.Admin.SigningKey)
	set("admin.issuer", &cfg.Admin.Issuer)
	set("admin.oidc.issuer_url", &cfg.Admin.OIDC.IssuerURL)
	set("admin.oidc.client_id", &cfg.Admin.OIDC.ClientID)

	if v := viper.GetString("audit.path"); v != "" {
		cfg.Audit.Enabled = true
		cfg.Audit.Type = "file"
		cfg.Audit.Path = v
	}
	if v := viper.GetString("tasks.prune_interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing PBICHAT_PRUNE_INTERVAL: %w", err)
		}
		cfg.Tasks.PruneInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}
	return cfg, nil
}
