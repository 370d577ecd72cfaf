package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

const (
	TypeLegacy = "legacy"

	// PowerBIScope is the fixed scope requested by the legacy strategy.
	PowerBIScope = "https://analysis.windows.net/powerbi/api/.default"
)

// CredentialFactory creates a confidential client credential.
type CredentialFactory func(tenantID, clientID, secret string, opts *azidentity.ClientSecretCredentialOptions) (azcore.TokenCredential, error)

func newClientSecretCredential(tenantID, clientID, secret string, opts *azidentity.ClientSecretCredentialOptions) (azcore.TokenCredential, error) {
	return azidentity.NewClientSecretCredential(tenantID, clientID, secret, opts)
}

// LegacyStrategy acquires tokens through the Azure SDK confidential client.
// A new credential is built for every call so nothing is served from the SDK's token cache.
type LegacyStrategy struct {
	name     string
	identity config.PowerBIConfig
	client   *http.Client

	newCredential CredentialFactory
}

var _ core.CredentialStrategy = (*LegacyStrategy)(nil)

func NewLegacyStrategy(cfg config.StrategyConfig, opts Options) *LegacyStrategy {
	factory := opts.CredentialFactory
	if factory == nil {
		factory = newClientSecretCredential
	}
	return &LegacyStrategy{
		name:          cfg.Name,
		identity:      opts.Identity,
		client:        opts.client(),
		newCredential: factory,
	}
}

func (l *LegacyStrategy) Name() string {
	return l.name
}

func (l *LegacyStrategy) Type() string {
	return TypeLegacy
}

func (l *LegacyStrategy) AcquireAccessToken(ctx context.Context) (*core.AccessToken, error) {
	if missing := l.identity.MissingIdentity(); len(missing) > 0 {
		return nil, &core.ConfigurationError{Missing: missing}
	}

	opts := &azidentity.ClientSecretCredentialOptions{}
	opts.Cloud = cloud.Configuration{
		ActiveDirectoryAuthorityHost: l.identity.AuthorityHost,
	}
	opts.Transport = l.client

	cred, err := l.newCredential(l.identity.TenantID, l.identity.ClientID, l.identity.ClientSecret, opts)
	if err != nil {
		return nil, fmt.Errorf("creating confidential client: %w", err)
	}

	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{PowerBIScope},
	})
	if err != nil {
		authErr := &core.AuthenticationError{Strategy: l.name, Cause: err}
		var failed *azidentity.AuthenticationFailedError
		if errors.As(err, &failed) && failed.RawResponse != nil {
			authErr.StatusCode = failed.RawResponse.StatusCode
		}
		return nil, authErr
	}
	if tok.Token == "" {
		return nil, &core.AuthenticationError{Strategy: l.name, Body: "confidential client returned no access token"}
	}

	token := &core.AccessToken{
		Value:     tok.Token,
		ExpiresAt: tok.ExpiresOn,
		Strategy:  l.name,
	}
	log.Ctx(ctx).Debug().
		Str("strategy", l.name).
		Str("fingerprint", token.Fingerprint()).
		Time("expires_at", token.ExpiresAt).
		Msg("acquired access token")
	return token, nil
}
