package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

type stubMinter struct {
	name  string
	cfg   *core.EmbedConfig
	err   error
	calls int
}

func (s *stubMinter) Name() string { return s.name }

func (s *stubMinter) MintEmbedToken(context.Context, core.EmbedRequest) (*core.EmbedConfig, error) {
	s.calls++
	return s.cfg, s.err
}

func configFrom(name string) *core.EmbedConfig {
	return &core.EmbedConfig{
		ReportID:        "r1",
		EmbedURL:        "https://app.powerbi.com/reportEmbed?reportId=r1",
		AccessToken:     "token-" + name,
		TokenExpiration: time.Now().Add(time.Hour),
	}
}

func TestFallback(t *testing.T) {
	errA := &core.AuthenticationError{Strategy: "direct", StatusCode: 401}
	errB := &core.UpstreamError{Operation: "GenerateToken", StatusCode: 403}

	tests := []struct {
		name         string
		a, b         *stubMinter
		wantToken    string
		wantMinter   string
		wantFallback bool
		wantErr      error
		wantBCalls   int
	}{
		{
			name:       "first succeeds, second never called",
			a:          &stubMinter{name: "direct", cfg: configFrom("a")},
			b:          &stubMinter{name: "legacy", cfg: configFrom("b")},
			wantToken:  "token-a",
			wantMinter: "direct",
		},
		{
			name:         "first fails, second succeeds",
			a:            &stubMinter{name: "direct", err: errA},
			b:            &stubMinter{name: "legacy", cfg: configFrom("b")},
			wantToken:    "token-b",
			wantMinter:   "legacy",
			wantFallback: true,
			wantBCalls:   1,
		},
		{
			name:       "both fail, second error surfaces",
			a:          &stubMinter{name: "direct", err: errA},
			b:          &stubMinter{name: "legacy", err: errB},
			wantErr:    errB,
			wantBCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFallback(tt.a, tt.b)
			out, err := f.Mint(context.Background(), core.EmbedRequest{})

			assert.Equal(t, 1, tt.a.calls)
			assert.Equal(t, tt.wantBCalls, tt.b.calls)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Same(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, out.Config.AccessToken)
			assert.Equal(t, tt.wantMinter, out.Minter)
			assert.Equal(t, tt.wantFallback, out.FallbackUsed())
		})
	}
}

func TestFallback_MintEmbedToken(t *testing.T) {
	f := NewFallback(&stubMinter{name: "direct", err: errors.New("down")}, &stubMinter{name: "legacy", cfg: configFrom("b")})
	cfg, err := f.MintEmbedToken(context.Background(), core.EmbedRequest{})
	require.NoError(t, err)
	assert.Equal(t, "token-b", cfg.AccessToken)
	assert.Equal(t, "fallback", f.Name())
}

func TestFallback_Empty(t *testing.T) {
	_, err := NewFallback().Mint(context.Background(), core.EmbedRequest{})
	assert.Error(t, err)
}

func TestFallback_Cancelled(t *testing.T) {
	a := &stubMinter{name: "direct", cfg: configFrom("a")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFallback(a).Mint(ctx, core.EmbedRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, a.calls)
}

func TestBuildEmbedURL(t *testing.T) {
	assert.Equal(t, "https://app.powerbi.com/reportEmbed?reportId=r%2F1", BuildEmbedURL("r/1", ""))
}
