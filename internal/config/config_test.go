package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "empty file gets defaults",
			yaml: "{}",
			check: func(t *testing.T, c *Config) {
				require.Len(t, c.Strategies, 2)
				assert.Equal(t, "direct", c.Strategies[0].Type)
				assert.Equal(t, "legacy", c.Strategies[1].Type)
				assert.Equal(t, DefaultAPIURL, c.PowerBI.APIURL)
				assert.Equal(t, DefaultScope, c.PowerBI.Scope)
				assert.Equal(t, DefaultPruneInterval, c.Tasks.PruneInterval)
			},
		},
		{
			name: "strategy options are captured inline",
			yaml: `
strategies:
  - name: primary
    type: direct
    discover: true
    token_url: https://idp.example.com/token
tasks:
  prune_interval: 30s
`,
			check: func(t *testing.T, c *Config) {
				require.Len(t, c.Strategies, 1)
				assert.Equal(t, true, c.Strategies[0].Config["discover"])
				assert.Equal(t, "https://idp.example.com/token", c.Strategies[0].Config["token_url"])
				assert.Equal(t, 30*time.Second, c.Tasks.PruneInterval)
			},
		},
		{
			name:    "duplicate strategy",
			yaml:    "strategies: [{name: a, type: direct}, {name: a, type: legacy}]",
			wantErr: "duplicate strategy name",
		},
		{
			name:    "strategy without type",
			yaml:    "strategies: [{name: a}]",
			wantErr: "empty type",
		},
		{
			name:    "relative api url",
			yaml:    "powerbi: {api_url: /v1.0/myorg}",
			wantErr: "powerbi.api_url",
		},
		{
			name:    "oidc admin issuer without client id",
			yaml:    "admin: {oidc: {issuer_url: https://login.example.com/tenant/v2.0}}",
			wantErr: "admin.oidc.client_id",
		},
		{
			name: "oidc admin issuer",
			yaml: "admin: {oidc: {issuer_url: https://login.example.com/tenant/v2.0, client_id: ops}}",
			check: func(t *testing.T, c *Config) {
				assert.True(t, c.Admin.Enabled())
				assert.Equal(t, "ops", c.Admin.OIDC.ClientID)
			},
		},
		{
			name:    "file auditor without path",
			yaml:    "audit: {enabled: true, type: file}",
			wantErr: "audit.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestMissingIdentity(t *testing.T) {
	p := PowerBIConfig{ClientID: "id"}
	assert.Equal(t, []string{"POWERBI_CLIENT_SECRET", "POWERBI_TENANT_ID"}, p.MissingIdentity())

	p.ClientSecret, p.TenantID = "s", "t"
	assert.Empty(t, p.MissingIdentity())
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.PowerBI.ClientSecret = "hunter2"
	cfg.Admin.SigningKey = "key"

	r := cfg.Redacted()
	assert.Equal(t, "[REDACTED]", r.PowerBI.ClientSecret)
	assert.Equal(t, "[REDACTED]", r.Admin.SigningKey)
	assert.Equal(t, "hunter2", cfg.PowerBI.ClientSecret)
}

func TestAdminEnabled(t *testing.T) {
	assert.False(t, AdminConfig{}.Enabled())
	assert.True(t, AdminConfig{SigningKey: "k"}.Enabled())
	assert.True(t, AdminConfig{OIDC: AdminOIDCConfig{IssuerURL: "https://idp"}}.Enabled())
}
