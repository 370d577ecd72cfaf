package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

const (
	// DefaultLeadTime is how long before expiry the embed token is renewed.
	DefaultLeadTime = 5 * time.Minute

	// DefaultTickInterval is how often the remaining lifetime is recomputed.
	DefaultTickInterval = time.Minute
)

var ErrClosed = errors.New("lifecycle manager closed")

// ConfigSource fetches a fresh embed configuration, e.g. GET /config.
type ConfigSource interface {
	FetchConfig(ctx context.Context) (*core.EmbedConfig, error)
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the observable state of the manager.
type Snapshot struct {
	State State

	// Config is the last configuration that passed validation. It is kept
	// while a refresh is loading or after a refresh failed.
	Config *core.EmbedConfig

	Err           error
	TimeRemaining time.Duration
	NextRefresh   time.Time
}

// Observer is called synchronously after every state change and every tick.
type Observer func(Snapshot)

// Manager keeps an embed configuration fresh by refreshing it ahead of expiry.
type Manager struct {
	source   ConfigSource
	clock    clock.WithTickerAndDelayedExecution
	lead     time.Duration
	interval time.Duration
	group    singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	config      *core.EmbedConfig
	err         error
	remaining   time.Duration
	nextRefresh time.Time
	timer       clock.Timer
	stopTicker  chan struct{}
	generation  uint64
	closed      bool
	observers   []Observer
}

type Option func(*Manager)

func WithClock(c clock.WithTickerAndDelayedExecution) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

func WithLeadTime(d time.Duration) Option {
	return func(m *Manager) {
		m.lead = d
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.interval = d
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, o)
	}
}

func New(source ConfigSource, opts ...Option) *Manager {
	m := &Manager{
		source:   source,
		clock:    clock.RealClock{},
		lead:     DefaultLeadTime,
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Refresh fetches a new configuration. Concurrent calls share a single fetch.
func (m *Manager) Refresh(ctx context.Context) (*core.EmbedConfig, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.EmbedConfig), nil
}

func (m *Manager) load(ctx context.Context) (*core.EmbedConfig, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.state = StateLoading
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	cfg, err := m.source.FetchConfig(ctx)
	if err == nil {
		err = cfg.Validate()
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		m.state = StateError
		m.err = err
		snap = m.snapshotLocked()
		m.mu.Unlock()

		log.Ctx(ctx).Warn().Err(err).Msg("embed config refresh failed")
		m.notify(snap)
		return nil, err
	}

	m.state = StateReady
	m.config = cfg
	m.err = nil
	m.scheduleLocked(cfg)
	snap = m.snapshotLocked()
	m.mu.Unlock()

	log.Ctx(ctx).Debug().
		Time("expires_at", cfg.TokenExpiration).
		Time("next_refresh", snap.NextRefresh).
		Msg("embed config refreshed")
	m.notify(snap)
	return cfg, nil
}

// scheduleLocked replaces the refresh timer and the remaining-time ticker.
func (m *Manager) scheduleLocked(cfg *core.EmbedConfig) {
	m.stopTimersLocked()
	m.generation++
	gen := m.generation

	now := m.clock.Now()
	delay := cfg.TokenExpiration.Sub(now) - m.lead
	if delay < 0 {
		delay = 0
	}
	m.nextRefresh = now.Add(delay)
	m.remaining = remaining(cfg.TokenExpiration, now)

	m.timer = m.clock.AfterFunc(delay, func() {
		go m.onTimer(gen)
	})

	ticker := m.clock.NewTicker(m.interval)
	stop := make(chan struct{})
	m.stopTicker = stop
	go m.tick(gen, ticker, stop)
}

func (m *Manager) onTimer(gen uint64) {
	m.mu.Lock()
	stale := m.closed || gen != m.generation
	if !stale {
		// fired; a failed refresh must not keep reporting this deadline
		m.timer = nil
	}
	m.mu.Unlock()
	if stale {
		return
	}
	_, _ = m.Refresh(m.ctx)
}

func (m *Manager) tick(gen uint64, ticker clock.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			m.mu.Lock()
			if m.closed || gen != m.generation || m.config == nil {
				m.mu.Unlock()
				return
			}
			m.remaining = remaining(m.config.TokenExpiration, m.clock.Now())
			snap := m.snapshotLocked()
			m.mu.Unlock()
			m.notify(snap)
		}
	}
}

func (m *Manager) stopTimersLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.stopTicker != nil {
		close(m.stopTicker)
		m.stopTicker = nil
	}
}

// Close stops the refresh timer and the ticker. It is safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.stopTimersLocked()
	m.cancel()
}

// Current returns the last valid configuration or nil.
func (m *Manager) Current() *core.EmbedConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NextRefreshAt returns the instant of the scheduled refresh, zero if none is scheduled.
func (m *Manager) NextRefreshAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer == nil {
		return time.Time{}
	}
	return m.nextRefresh
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		State:         m.state,
		Config:        m.config,
		Err:           m.err,
		TimeRemaining: m.remaining,
	}
	if m.timer != nil {
		s.NextRefresh = m.nextRefresh
	}
	return s
}

func (m *Manager) notify(s Snapshot) {
	for _, o := range m.observers {
		o(s)
	}
}

func remaining(expiry, now time.Time) time.Duration {
	if d := expiry.Sub(now); d > 0 {
		return d
	}
	return 0
}
