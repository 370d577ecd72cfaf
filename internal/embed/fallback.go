package embed

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/metrics"
)

// Outcome is a successful fallback mint.
type Outcome struct {
	Config *core.EmbedConfig

	// Minter is the name of the minter that produced Config.
	Minter string

	// Failures holds the errors of the minters tried before it.
	Failures []error
}

func (o *Outcome) FallbackUsed() bool {
	return len(o.Failures) > 0
}

// Fallback tries each minter in order. Failures are logged and suppressed;
// only the last one is returned when every minter fails.
type Fallback struct {
	minters []core.EmbedMinter
}

var _ core.EmbedMinter = (*Fallback)(nil)

func NewFallback(minters ...core.EmbedMinter) *Fallback {
	return &Fallback{minters: minters}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) MintEmbedToken(ctx context.Context, req core.EmbedRequest) (*core.EmbedConfig, error) {
	out, err := f.Mint(ctx, req)
	if err != nil {
		return nil, err
	}
	return out.Config, nil
}

func (f *Fallback) Mint(ctx context.Context, req core.EmbedRequest) (*Outcome, error) {
	if len(f.minters) == 0 {
		return nil, errors.New("no embed minter configured")
	}

	var failures []error
	for i, m := range f.minters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := m.MintEmbedToken(ctx, req)
		if err == nil {
			if i > 0 {
				metrics.RecordFallback()
				log.Ctx(ctx).Info().
					Str("strategy", m.Name()).
					Int("failed_attempts", i).
					Msg("embed config served by fallback strategy")
			}
			return &Outcome{Config: cfg, Minter: m.Name(), Failures: failures}, nil
		}

		failures = append(failures, err)
		ev := log.Ctx(ctx).Warn().
			Err(err).
			Str("strategy", m.Name()).
			Str("kind", core.KindOf(err))
		if i < len(f.minters)-1 {
			ev.Msg("embed minting failed, falling back to next strategy")
		} else {
			ev.Msg("embed minting failed, no strategy left")
		}
	}
	return nil, failures[len(failures)-1]
}
