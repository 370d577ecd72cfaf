package credentials

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

type mockCredential struct {
	mock.Mock
}

func (m *mockCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(azcore.AccessToken), args.Error(1)
}

func legacyWith(t *testing.T, identity config.PowerBIConfig, cred azcore.TokenCredential) (*LegacyStrategy, *int) {
	t.Helper()
	built := 0
	s := NewLegacyStrategy(config.StrategyConfig{Name: "legacy", Type: TypeLegacy}, Options{
		Identity: identity,
		CredentialFactory: func(tenantID, clientID, secret string, _ *azidentity.ClientSecretCredentialOptions) (azcore.TokenCredential, error) {
			built++
			assert.Equal(t, identity.TenantID, tenantID)
			assert.Equal(t, identity.ClientID, clientID)
			assert.Equal(t, identity.ClientSecret, secret)
			return cred, nil
		},
	})
	return s, &built
}

func TestLegacyStrategy_Acquire(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	cred := &mockCredential{}
	cred.On("GetToken", mock.Anything, policy.TokenRequestOptions{Scopes: []string{PowerBIScope}}).
		Return(azcore.AccessToken{Token: "msal-token", ExpiresOn: expires}, nil)

	s, built := legacyWith(t, testIdentity("https://login.microsoftonline.com"), cred)

	for i := 0; i < 2; i++ {
		tok, err := s.AcquireAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "msal-token", tok.Value)
		assert.Equal(t, expires, tok.ExpiresAt)
		assert.Equal(t, "legacy", tok.Strategy)
	}
	assert.Equal(t, 2, *built)
	cred.AssertNumberOfCalls(t, "GetToken", 2)
}

func TestLegacyStrategy_Rejected(t *testing.T) {
	cred := &mockCredential{}
	cred.On("GetToken", mock.Anything, mock.Anything).Return(azcore.AccessToken{}, errors.New("AADSTS7000215: invalid client secret"))

	s, _ := legacyWith(t, testIdentity("https://login.microsoftonline.com"), cred)
	_, err := s.AcquireAccessToken(context.Background())

	var authErr *core.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "legacy", authErr.Strategy)
	assert.Equal(t, core.KindAuthentication, core.KindOf(err))
}

func TestLegacyStrategy_MissingIdentity(t *testing.T) {
	cred := &mockCredential{}
	s, built := legacyWith(t, config.PowerBIConfig{ClientID: "id"}, cred)

	_, err := s.AcquireAccessToken(context.Background())

	var cfgErr *core.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Zero(t, *built)
	cred.AssertNotCalled(t, "GetToken", mock.Anything, mock.Anything)
}

func TestBuildRegistry(t *testing.T) {
	reg, err := BuildRegistry(config.Default().Strategies, Options{HTTPClient: http.DefaultClient})
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, TypeDirect, list[0].Type())
	assert.Equal(t, TypeLegacy, list[1].Type())
	assert.Equal(t, "direct", reg.Primary().Name())

	s, ok := reg.Get("legacy")
	require.True(t, ok)
	assert.Equal(t, TypeLegacy, s.Type())

	_, err = BuildRegistry([]config.StrategyConfig{{Name: "x", Type: "kerberos"}}, Options{})
	assert.ErrorContains(t, err, "unknown strategy type")

	_, err = BuildRegistry(nil, Options{})
	assert.Error(t, err)
}
