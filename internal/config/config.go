package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultAuthorityHost = "https://login.microsoftonline.com"
	DefaultAPIURL        = "https://api.powerbi.com/v1.0/myorg"
	DefaultScope         = "https://analysis.windows.net/powerbi/api/.default"
	DefaultPruneInterval = 10 * time.Minute

	// DefaultAssistantMaxBody caps relayed request bodies (audio uploads).
	DefaultAssistantMaxBody = 25 << 20
)

type Config struct {
	PowerBI    PowerBIConfig    `yaml:"powerbi"`
	Strategies []StrategyConfig `yaml:"strategies"`
	Audit      AuditConfig      `yaml:"audit"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Admin      AdminConfig      `yaml:"admin"`
	Tasks      TasksConfig      `yaml:"tasks"`
}

// PowerBIConfig holds the service identity and the default report coordinates.
// Identity fields are only checked when a credential is actually needed.
type PowerBIConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TenantID     string `yaml:"tenant_id"`

	// Scope requested by the direct strategy.
	Scope string `yaml:"scope"`

	ReportID    string `yaml:"report_id"`
	EmbedURL    string `yaml:"embed_url"`
	DatasetID   string `yaml:"dataset_id"`
	WorkspaceID string `yaml:"workspace_id"`

	// AuthorityHost is the identity provider base, e.g. https://login.microsoftonline.com
	AuthorityHost string `yaml:"authority_host"`

	// APIURL is the reporting API base including the org scope.
	APIURL string `yaml:"api_url"`
}

// StrategyConfig holds configuration for one credential strategy.
// The order in the config file is the fallback order.
type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`    // e.g., "direct", "legacy"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

type AssistantConfig struct {
	// BackendURL of the AI backend. The relay is disabled when empty.
	BackendURL   string `yaml:"backend_url"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type AdminConfig struct {
	// SigningKey is the HMAC key admin session tokens are verified with.
	SigningKey string `yaml:"signing_key"`
	Issuer     string `yaml:"issuer"`

	// OIDC additionally accepts ID tokens of an OpenID Connect provider.
	OIDC AdminOIDCConfig `yaml:"oidc"`
}

type AdminOIDCConfig struct {
	IssuerURL  string `yaml:"issuer_url"`
	ClientID   string `yaml:"client_id"`
	RolesClaim string `yaml:"roles_claim"`
}

// Enabled reports whether admin routes are mounted at all.
func (a AdminConfig) Enabled() bool {
	return a.SigningKey != "" || a.OIDC.IssuerURL != ""
}

type TasksConfig struct {
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// Default returns a configuration with the default strategy order (direct, then legacy).
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.PowerBI.AuthorityHost == "" {
		c.PowerBI.AuthorityHost = DefaultAuthorityHost
	}
	if c.PowerBI.APIURL == "" {
		c.PowerBI.APIURL = DefaultAPIURL
	}
	if c.PowerBI.Scope == "" {
		c.PowerBI.Scope = DefaultScope
	}
	if len(c.Strategies) == 0 {
		c.Strategies = []StrategyConfig{
			{Name: "direct", Type: "direct"},
			{Name: "legacy", Type: "legacy"},
		}
	}
	if c.Assistant.MaxBodyBytes <= 0 {
		c.Assistant.MaxBodyBytes = DefaultAssistantMaxBody
	}
	if c.Tasks.PruneInterval == 0 {
		c.Tasks.PruneInterval = DefaultPruneInterval
	}
	if c.Audit.Type == "" {
		c.Audit.Type = "memory"
	}
}

func (c *Config) Validate() error {
	seen := make(map[string]struct{})
	for idx, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategy at index %d has empty name", idx)
		}
		if s.Type == "" {
			return fmt.Errorf("strategy '%s' has empty type", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate strategy name '%s'", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	for name, raw := range map[string]string{
		"powerbi.authority_host": c.PowerBI.AuthorityHost,
		"powerbi.api_url":        c.PowerBI.APIURL,
		"assistant.backend_url":  c.Assistant.BackendURL,
		"admin.oidc.issuer_url":  c.Admin.OIDC.IssuerURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got '%s'", name, raw)
		}
	}

	if c.Admin.OIDC.IssuerURL != "" && c.Admin.OIDC.ClientID == "" {
		return fmt.Errorf("admin.oidc.client_id is required when admin.oidc.issuer_url is set")
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "memory", "noop":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file auditor")
			}
		default:
			return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
		}
	}

	if c.Tasks.PruneInterval < 0 {
		return fmt.Errorf("tasks.prune_interval must not be negative")
	}
	return nil
}

// MissingIdentity lists the environment names of absent identity settings.
func (p PowerBIConfig) MissingIdentity() []string {
	var missing []string
	if p.ClientID == "" {
		missing = append(missing, "POWERBI_CLIENT_ID")
	}
	if p.ClientSecret == "" {
		missing = append(missing, "POWERBI_CLIENT_SECRET")
	}
	if p.TenantID == "" {
		missing = append(missing, "POWERBI_TENANT_ID")
	}
	return missing
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.PowerBI.ClientSecret != "" {
		c.PowerBI.ClientSecret = "[REDACTED]"
	}
	if c.Admin.SigningKey != "" {
		c.Admin.SigningKey = "[REDACTED]"
	}
	return c
}
