package credentials

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Discovery resolves token endpoints from the tenant's OpenID configuration.
// Resolved endpoints are remembered per tenant, failures are not.
type Discovery struct {
	authorityHost string
	client        *http.Client

	mu        sync.Mutex
	endpoints map[string]string
}

func NewDiscovery(authorityHost string, client *http.Client) *Discovery {
	return &Discovery{
		authorityHost: strings.TrimRight(authorityHost, "/"),
		client:        client,
		endpoints:     make(map[string]string),
	}
}

// IssuerURL is the v2.0 issuer of a tenant.
func (d *Discovery) IssuerURL(tenantID string) string {
	return d.authorityHost + "/" + tenantID + "/v2.0"
}

func (d *Discovery) TokenURL(ctx context.Context, tenantID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if u, ok := d.endpoints[tenantID]; ok {
		return u, nil
	}

	if d.client != nil {
		ctx = oidc.ClientContext(ctx, d.client)
	}
	provider, err := oidc.NewProvider(ctx, d.IssuerURL(tenantID))
	if err != nil {
		return "", fmt.Errorf("discovering token endpoint for tenant '%s': %w", tenantID, err)
	}
	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return "", fmt.Errorf("openid configuration of tenant '%s' has no token_endpoint", tenantID)
	}

	d.endpoints[tenantID] = tokenURL
	return tokenURL, nil
}
