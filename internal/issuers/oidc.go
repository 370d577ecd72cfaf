package issuers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/Ayaan2907/powerBiChat/internal/config"
)

// DefaultRolesClaim is where Entra ID puts the app roles of a principal.
const DefaultRolesClaim = "roles"

// OIDCIssuer verifies ID tokens of an OpenID Connect provider, e.g. the operators' Entra ID tenant.
type OIDCIssuer struct {
	issuerURL  string
	rolesClaim string
	verifier   *oidc.IDTokenVerifier
}

func NewOIDCIssuer(ctx context.Context, cfg config.AdminOIDCConfig, client *http.Client) (*OIDCIssuer, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("oidc issuer missing 'issuer_url'")
	}
	// expected audience, required
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("oidc issuer '%s' missing 'client_id'", cfg.IssuerURL)
	}

	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("creating oidc provider for issuer '%s': %w", cfg.IssuerURL, err)
	}

	rolesClaim := cfg.RolesClaim
	if rolesClaim == "" {
		rolesClaim = DefaultRolesClaim
	}

	return &OIDCIssuer{
		issuerURL:  cfg.IssuerURL,
		rolesClaim: rolesClaim,
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (o *OIDCIssuer) Name() string {
	return "oidc"
}

// IssuerURL is the iss claim of tokens this verifier accepts.
func (o *OIDCIssuer) IssuerURL() string {
	return o.issuerURL
}

func (o *OIDCIssuer) Verify(ctx context.Context, token string) (*Principal, error) {
	idToken, err := o.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("oidc verification failed: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting oidc claims: %w", err)
	}

	return &Principal{
		Subject: idToken.Subject,
		Issuer:  idToken.Issuer,
		Roles:   stringList(claims[o.rolesClaim]),
	}, nil
}

// stringList accepts a single string or a list of strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
