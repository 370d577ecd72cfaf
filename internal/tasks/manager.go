package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

const (
	MaxLogsPerTask = 1000

	DefaultRunTimeout = 5 * time.Minute
)

// Manager runs named maintenance tasks, either on an interval or on demand.
type Manager struct {
	tasks sync.Map
	clock clock.WithTicker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Manager)

func WithClock(c clock.WithTicker) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Register adds a task without a per-run timeout of its own.
func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) {
	m.add(TaskDefinition{Name: name, Interval: interval, Handler: fn})
}

// RegisterAll registers every definition with the manager.
func (m *Manager) RegisterAll(defs ...TaskDefinition) {
	for _, d := range defs {
		m.add(d)
	}
}

func (m *Manager) add(def TaskDefinition) {
	j := newJob(def, m.clock)
	m.tasks.Store(def.Name, j)

	if def.Interval > 0 {
		m.wg.Add(1)
		go m.scheduler(j)
	}
}

// Trigger starts the named task in the background.
func (m *Manager) Trigger(name string) error {
	j, err := m.get(name)
	if err != nil {
		return err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		j.run(m.ctx)
	}()
	return nil
}

// RunNow executes the named task synchronously.
func (m *Manager) RunNow(ctx context.Context, name string) (TaskStatus, error) {
	j, err := m.get(name)
	if err != nil {
		return TaskStatus{}, err
	}
	j.run(ctx)
	return j.status(), nil
}

func (m *Manager) ListStatus() []TaskStatus {
	var list []TaskStatus
	m.tasks.Range(func(key, value any) bool {
		list = append(list, value.(*job).status())
		return true
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	j, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return j.snapshotLogs(), nil
}

// Stop cancels running tasks and waits for schedulers to exit.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) get(name string) (*job, error) {
	v, ok := m.tasks.Load(name)
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return v.(*job), nil
}

func (m *Manager) scheduler(j *job) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(j.def.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C():
			j.run(m.ctx)
		}
	}
}
