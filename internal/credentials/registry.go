package credentials

import (
	"fmt"
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// Options are shared by every strategy of a registry.
type Options struct {
	Identity   config.PowerBIConfig
	HTTPClient *http.Client

	// CredentialFactory replaces the Azure SDK credential of legacy strategies.
	CredentialFactory CredentialFactory
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

// Registry keeps the configured strategies in fallback order.
type Registry struct {
	ordered []core.CredentialStrategy
	byName  map[string]core.CredentialStrategy
}

func BuildRegistry(cfgs []config.StrategyConfig, opts Options) (*Registry, error) {
	reg := &Registry{byName: make(map[string]core.CredentialStrategy)}
	for _, cfg := range cfgs {
		var strategy core.CredentialStrategy
		switch cfg.Type {
		case TypeDirect:
			s, err := NewDirectStrategy(cfg, opts)
			if err != nil {
				return nil, fmt.Errorf("building direct strategy %q: %w", cfg.Name, err)
			}
			strategy = s
		case TypeLegacy:
			strategy = NewLegacyStrategy(cfg, opts)
		default:
			return nil, fmt.Errorf("unknown strategy type %q for strategy %q", cfg.Type, cfg.Name)
		}
		if _, dup := reg.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate strategy %q", cfg.Name)
		}
		reg.ordered = append(reg.ordered, strategy)
		reg.byName[cfg.Name] = strategy
	}
	if len(reg.ordered) == 0 {
		return nil, fmt.Errorf("no credential strategy configured")
	}
	return reg, nil
}

// List returns the strategies in fallback order.
func (r *Registry) List() []core.CredentialStrategy {
	out := make([]core.CredentialStrategy, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Get(name string) (core.CredentialStrategy, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Primary is the first configured strategy. Export operations use it without fallback.
func (r *Registry) Primary() core.CredentialStrategy {
	return r.ordered[0]
}
