package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

const (
	TypeDirect = "direct"

	maxTokenResponseBytes = 1 << 20
)

type DirectStrategyConfig struct {
	// Optional: fixed token endpoint. Defaults to {authority}/{tenant}/oauth2/v2.0/token
	TokenURL string `mapstructure:"token_url"`

	// Optional: resolve the token endpoint via OpenID Connect discovery.
	Discover bool `mapstructure:"discover"`

	// Optional: overrides powerbi.scope for this strategy.
	Scope string `mapstructure:"scope"`
}

// DirectStrategy performs the client-credentials grant as an explicit form POST
// against the identity provider's token endpoint.
type DirectStrategy struct {
	name     string
	identity config.PowerBIConfig
	cfg      DirectStrategyConfig
	client   *http.Client
	now      func() time.Time

	discovery *Discovery
}

var _ core.CredentialStrategy = (*DirectStrategy)(nil)

func NewDirectStrategy(cfg config.StrategyConfig, opts Options) (*DirectStrategy, error) {
	var dc DirectStrategyConfig
	if err := mapstructure.Decode(cfg.Config, &dc); err != nil {
		return nil, fmt.Errorf("decoding direct strategy config: %w", err)
	}
	if dc.TokenURL != "" && dc.Discover {
		return nil, fmt.Errorf("direct strategy '%s': token_url and discover are mutually exclusive", cfg.Name)
	}

	s := &DirectStrategy{
		name:     cfg.Name,
		identity: opts.Identity,
		cfg:      dc,
		client:   opts.client(),
		now:      time.Now,
	}
	if dc.Discover {
		s.discovery = NewDiscovery(opts.Identity.AuthorityHost, s.client)
	}
	return s, nil
}

func (d *DirectStrategy) Name() string {
	return d.name
}

func (d *DirectStrategy) Type() string {
	return TypeDirect
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
}

func (d *DirectStrategy) AcquireAccessToken(ctx context.Context) (*core.AccessToken, error) {
	if missing := d.identity.MissingIdentity(); len(missing) > 0 {
		return nil, &core.ConfigurationError{Missing: missing}
	}

	tokenURL, err := d.tokenEndpoint(ctx)
	if err != nil {
		return nil, d.authError(0, "", err)
	}

	scope := d.cfg.Scope
	if scope == "" {
		scope = d.identity.Scope
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {d.identity.ClientID},
		"client_secret": {d.identity.ClientSecret},
		"scope":         {scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, d.authError(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return nil, d.authError(resp.StatusCode, "", fmt.Errorf("reading token response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, d.authError(resp.StatusCode, string(body), nil)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, d.authError(resp.StatusCode, "", fmt.Errorf("decoding token response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, d.authError(resp.StatusCode, "token response did not contain an access_token", nil)
	}

	token := &core.AccessToken{
		Value:     tr.AccessToken,
		ExpiresAt: d.expiry(tr),
		Strategy:  d.name,
	}
	log.Ctx(ctx).Debug().
		Str("strategy", d.name).
		Str("fingerprint", token.Fingerprint()).
		Time("expires_at", token.ExpiresAt).
		Msg("acquired access token")
	return token, nil
}

func (d *DirectStrategy) tokenEndpoint(ctx context.Context) (string, error) {
	switch {
	case d.cfg.TokenURL != "":
		return d.cfg.TokenURL, nil
	case d.discovery != nil:
		return d.discovery.TokenURL(ctx, d.identity.TenantID)
	default:
		return TokenURL(d.identity.AuthorityHost, d.identity.TenantID), nil
	}
}

func (d *DirectStrategy) expiry(tr tokenResponse) time.Time {
	if secs, err := tr.ExpiresIn.Int64(); err == nil && secs > 0 {
		return d.now().Add(time.Duration(secs) * time.Second)
	}
	exp, err := ExpiryFromJWT(tr.AccessToken)
	if err != nil {
		return time.Time{}
	}
	return exp
}

// authError builds an AuthenticationError with every credential scrubbed from the body.
func (d *DirectStrategy) authError(status int, body string, cause error) error {
	return &core.AuthenticationError{
		Strategy:   d.name,
		StatusCode: status,
		Body:       core.Redact(body, d.identity.ClientSecret),
		Cause:      cause,
	}
}

// TokenURL returns the v2.0 token endpoint of a tenant.
func TokenURL(authorityHost, tenantID string) string {
	return strings.TrimRight(authorityHost, "/") + "/" + url.PathEscape(tenantID) + "/oauth2/v2.0/token"
}

// ExpiryFromJWT reads the exp claim of a token without verifying its signature.
func ExpiryFromJWT(raw string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("token missing 'exp' claim")
	}
	return exp.Time, nil
}
