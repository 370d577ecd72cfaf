package core

import "context"

// CredentialStrategy obtains a service-identity access token from the identity provider.
// Implementations: direct client-credentials POST, Azure SDK confidential client.
type CredentialStrategy interface {
	// Name returns the identifier of this strategy (as used in config).
	Name() string

	// Type returns the implementation type, e.g. "direct" or "legacy".
	Type() string

	// AcquireAccessToken performs a fresh client-credentials exchange.
	// Nothing is cached between calls.
	AcquireAccessToken(ctx context.Context) (*AccessToken, error)
}

// EmbedMinter mints an embed configuration for a single report.
type EmbedMinter interface {
	// Name returns the name of the credential path used by this minter.
	Name() string

	MintEmbedToken(ctx context.Context, req EmbedRequest) (*EmbedConfig, error)
}
