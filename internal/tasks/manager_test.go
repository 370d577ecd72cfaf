package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fakeclock "k8s.io/utils/clock/testing"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/logging"
	"github.com/Ayaan2907/powerBiChat/internal/store"
)

func TestManager_RunNow(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(WithClock(fc))
	defer m.Stop()

	m.Register("ok", 0, func(ctx context.Context, l logging.InternalLogger) error {
		l.Info("hello %s", "world")
		return nil
	})
	m.Register("broken", 0, func(ctx context.Context, l logging.InternalLogger) error {
		return errors.New("boom")
	})

	status, err := m.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	require.NotNil(t, status.Last)
	assert.Equal(t, OutcomeSuccess, status.Last.Outcome)
	assert.Equal(t, 1, status.Runs)
	assert.Zero(t, status.Failures)
	assert.True(t, status.NextRun.IsZero())

	logs, err := m.GetLogs("ok")
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "starting task execution", logs[0].Message)
	assert.Equal(t, "hello world", logs[1].Message)

	status, err = m.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	require.NotNil(t, status.Last)
	assert.Equal(t, OutcomeFailed, status.Last.Outcome)
	assert.Equal(t, "boom", status.Last.Error)
	assert.Equal(t, 1, status.Failures)

	_, err = m.RunNow(context.Background(), "missing")
	assert.True(t, IsTaskNotFound(err))

	list := m.ListStatus()
	require.Len(t, list, 2)
	assert.Equal(t, "broken", list[0].Name)
	assert.Equal(t, "ok", list[1].Name)
}

func TestManager_Schedules(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(WithClock(fc))
	defer m.Stop()

	var runs atomic.Int32
	m.Register("tick", time.Minute, func(ctx context.Context, l logging.InternalLogger) error {
		runs.Add(1)
		return nil
	})

	status := m.ListStatus()[0]
	assert.Equal(t, fc.Now().Add(time.Minute), status.NextRun)

	require.Eventually(t, fc.HasWaiters, time.Second, 5*time.Millisecond)
	fc.Step(time.Minute)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestManager_Trigger(t *testing.T) {
	m := NewManager()

	done := make(chan struct{})
	m.Register("once", 0, func(ctx context.Context, l logging.InternalLogger) error {
		close(done)
		return nil
	})

	require.NoError(t, m.Trigger("once"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not triggered")
	}
	m.Stop()

	assert.Error(t, m.Trigger("nope"))
}

func TestPruneExpiredTokens(t *testing.T) {
	s := store.NewInMemoryTokenStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, core.EmbedTokenRecord{ReportID: "r", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, s.Save(ctx, core.EmbedTokenRecord{ReportID: "r", ExpiresAt: time.Now().Add(time.Hour)}))

	m := NewManager()
	defer m.Stop()
	m.RegisterAll(TaskDefinition{Name: PruneTokensTask, Handler: PruneExpiredTokens(s)})

	status, err := m.RunNow(ctx, PruneTokensTask)
	require.NoError(t, err)
	require.NotNil(t, status.Last)
	assert.Equal(t, OutcomeSuccess, status.Last.Outcome)

	logs, _ := m.GetLogs(PruneTokensTask)
	var messages []string
	for _, l := range logs {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "pruned 1 expired embed token records")

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestManager_RunTimeout(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	m.RegisterAll(TaskDefinition{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Handler: func(ctx context.Context, l logging.InternalLogger) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	status, err := m.RunNow(context.Background(), "slow")
	require.NoError(t, err)
	require.NotNil(t, status.Last)
	assert.Equal(t, OutcomeTimeout, status.Last.Outcome)
	assert.Equal(t, 1, status.Failures)

	logs, err := m.GetLogs("slow")
	require.NoError(t, err)
	assert.Equal(t, "task timed out after 10ms", logs[len(logs)-1].Message)
	assert.Equal(t, "error", logs[len(logs)-1].Level)
}

func TestManager_LogsResetPerRun(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var n atomic.Int32
	m.Register("count", 0, func(ctx context.Context, l logging.InternalLogger) error {
		l.Info("run %d", n.Add(1))
		return nil
	})

	for range 2 {
		_, err := m.RunNow(context.Background(), "count")
		require.NoError(t, err)
	}

	logs, err := m.GetLogs("count")
	require.NoError(t, err)
	var messages []string
	for _, l := range logs {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "run 2")
	assert.NotContains(t, messages, "run 1")

	list := m.ListStatus()
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Runs)
}
