package issuers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/config"
)

// Registry dispatches a token to the OIDC verifier matching its iss claim.
// Tokens of any other issuer go to the static verifier, if one is configured.
type Registry struct {
	byIssuer map[string]Verifier
	static   Verifier
}

func NewRegistry(static Verifier, oidcVerifiers ...*OIDCIssuer) *Registry {
	r := &Registry{
		byIssuer: make(map[string]Verifier, len(oidcVerifiers)),
		static:   static,
	}
	for _, v := range oidcVerifiers {
		r.byIssuer[v.IssuerURL()] = v
	}
	return r
}

// BuildRegistry creates the verifiers for the admin routes.
// It returns nil if neither a signing key nor an OIDC issuer is configured.
func BuildRegistry(ctx context.Context, cfg config.AdminConfig, client *http.Client) (*Registry, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var static Verifier
	if cfg.SigningKey != "" {
		s, err := NewStatic([]byte(cfg.SigningKey), cfg.Issuer)
		if err != nil {
			return nil, err
		}
		static = s
	}

	var oidcVerifiers []*OIDCIssuer
	if cfg.OIDC.IssuerURL != "" {
		o, err := NewOIDCIssuer(ctx, cfg.OIDC, client)
		if err != nil {
			return nil, fmt.Errorf("building oidc issuer: %w", err)
		}
		oidcVerifiers = append(oidcVerifiers, o)
	}

	return NewRegistry(static, oidcVerifiers...), nil
}

func (r *Registry) Name() string {
	return "registry"
}

func (r *Registry) Verify(ctx context.Context, token string) (*Principal, error) {
	iss, err := ExtractIssuerURL(token)
	if err != nil {
		return nil, err
	}
	if v, ok := r.byIssuer[iss]; ok {
		return v.Verify(ctx, token)
	}
	if r.static == nil {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownIssuer, iss)
	}
	return r.static.Verify(ctx, token)
}
