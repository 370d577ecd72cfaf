package exporter

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

type fakeAPI struct {
	mu        sync.Mutex
	statuses  []core.ExportJob
	submits   int
	polls     int
	downloads int
	statusErr error
	exportID  string

	statusRefs   []core.ExportRef
	downloadRefs []core.ExportRef
}

func (f *fakeAPI) SubmitExport(_ context.Context, req core.ExportRequest) (*core.ExportSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	id := f.exportID
	if id == "" {
		id = "exp-1"
	}
	return &core.ExportSubmission{ExportID: id, ReportID: req.ReportID, WorkspaceID: req.WorkspaceID, Format: req.Format}, nil
}

func (f *fakeAPI) ExportStatus(_ context.Context, ref core.ExportRef) (*core.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	f.statusRefs = append(f.statusRefs, ref)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	idx := f.polls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	job := f.statuses[idx]
	job.ExportID = ref.ExportID
	return &job, nil
}

func (f *fakeAPI) DownloadExport(_ context.Context, ref core.ExportRef) (*core.ExportFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	f.downloadRefs = append(f.downloadRefs, ref)
	return &core.ExportFile{
		Body:        io.NopCloser(strings.NewReader("%PDF-1.7")),
		ContentType: "application/pdf",
	}, nil
}

type staticConfig struct {
	cfg *core.EmbedConfig
}

func (s staticConfig) Current() *core.EmbedConfig { return s.cfg }

// instantTimer fires immediately and records every requested wait.
type instantTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

var defaultConfig = staticConfig{cfg: &core.EmbedConfig{ReportID: "r-1", WorkspaceID: "ws-1"}}

func running(pct int) core.ExportJob {
	return core.ExportJob{Status: core.StatusRunning, PercentComplete: pct}
}

func TestRun_EndToEnd(t *testing.T) {
	api := &fakeAPI{exportID: "E1", statuses: []core.ExportJob{
		running(40),
		{Status: core.StatusSucceeded, PercentComplete: 100},
	}}

	var events []Progress
	timer := newInstantTimer()
	o := New(api, defaultConfig,
		WithTimer(timer),
		WithProgress(func(p Progress) { events = append(events, p) }),
	)

	res, err := o.Run(context.Background(), core.ExportRequest{Format: core.FormatPDF, ReportID: "R1", WorkspaceID: "W1"})
	require.NoError(t, err)
	require.NotNil(t, res.File)
	defer res.File.Body.Close()

	want := core.ExportRef{ExportID: "E1", ReportID: "R1", WorkspaceID: "W1"}
	assert.Equal(t, 1, api.submits)
	assert.Equal(t, 2, api.polls)
	assert.Equal(t, []core.ExportRef{want, want}, api.statusRefs)
	assert.Equal(t, []core.ExportRef{want}, api.downloadRefs)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, core.StatusSucceeded, res.Job.Status)
	assert.Equal(t, []time.Duration{DefaultPollInterval}, timer.waits)

	var phases []Phase
	for _, e := range events {
		phases = append(phases, e.Phase)
	}
	assert.Equal(t, []Phase{PhaseSubmitting, PhasePolling, PhasePolling, PhaseDownloading, PhaseDone}, phases)
	assert.Equal(t, "Export running... 40%", events[2].Message)
	assert.Equal(t, 40, events[2].Percent)
	assert.Equal(t, "Export completed successfully!", events[len(events)-1].Message)
	assert.Equal(t, "E1", events[len(events)-1].ExportID)
}

func TestRun_TimesOutAfterSixtyAttempts(t *testing.T) {
	api := &fakeAPI{statuses: []core.ExportJob{running(10)}}
	timer := newInstantTimer()

	var last Progress
	o := New(api, defaultConfig, WithTimer(timer), WithProgress(func(p Progress) { last = p }))

	res, err := o.Run(context.Background(), core.ExportRequest{})
	require.Error(t, err)

	var timeout *core.ExportTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 60, timeout.Attempts)
	assert.Equal(t, "exp-1", timeout.ExportID)
	assert.Equal(t, 60, api.polls)
	assert.Equal(t, 0, api.downloads)
	assert.Len(t, timer.waits, 59)
	assert.Equal(t, 60, res.Attempts)
	assert.Equal(t, PhaseTimedOut, last.Phase)
}

func TestRun_FailedStopsPolling(t *testing.T) {
	api := &fakeAPI{statuses: []core.ExportJob{
		running(0),
		running(30),
		{Status: core.StatusFailed},
	}}

	var last Progress
	o := New(api, defaultConfig, WithTimer(newInstantTimer()), WithProgress(func(p Progress) { last = p }))

	_, err := o.Run(context.Background(), core.ExportRequest{Format: core.FormatPPTX})
	var failed *core.ExportFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, core.StatusFailed, failed.Status)
	assert.Equal(t, 3, api.polls)
	assert.Equal(t, 0, api.downloads)
	assert.Equal(t, PhaseFailed, last.Phase)
}

func TestRun_UnknownStatusKeepsPolling(t *testing.T) {
	api := &fakeAPI{statuses: []core.ExportJob{
		{Status: "Queued"},
		{Status: core.StatusSucceeded, PercentComplete: 100},
	}}
	o := New(api, defaultConfig, WithTimer(newInstantTimer()))

	res, err := o.Run(context.Background(), core.ExportRequest{})
	require.NoError(t, err)
	res.File.Body.Close()
	assert.Equal(t, 2, api.polls)
}

func TestRun_StatusErrorIsNotRetried(t *testing.T) {
	upstream := &core.UpstreamError{Operation: "export status", StatusCode: 404, Body: "not found"}
	api := &fakeAPI{statusErr: upstream}
	o := New(api, defaultConfig, WithTimer(newInstantTimer()))

	_, err := o.Run(context.Background(), core.ExportRequest{})
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1, api.polls)
}

func TestSubmit_MissingIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		config  ConfigProvider
		req     core.ExportRequest
		missing []string
	}{
		{
			name:    "no config",
			config:  staticConfig{},
			missing: []string{"reportId", "workspaceId"},
		},
		{
			name:    "config without workspace",
			config:  staticConfig{cfg: &core.EmbedConfig{ReportID: "r-1"}},
			missing: []string{"workspaceId"},
		},
		{
			name:    "request fills report only",
			config:  staticConfig{},
			req:     core.ExportRequest{ReportID: "r-2"},
			missing: []string{"workspaceId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			o := New(api, tt.config)

			_, err := o.Run(context.Background(), tt.req)
			var missing *core.MissingParameterError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.missing, missing.Params)
			assert.Zero(t, api.submits)
			assert.Zero(t, api.polls)
		})
	}
}

func TestSubmit_RequestOverridesConfig(t *testing.T) {
	api := &fakeAPI{}
	o := New(api, defaultConfig)

	sub, err := o.Submit(context.Background(), core.ExportRequest{Format: core.FormatPNG, ReportID: "r-9"})
	require.NoError(t, err)
	assert.Equal(t, "r-9", sub.ReportID)
	assert.Equal(t, "ws-1", sub.WorkspaceID)
	assert.Equal(t, core.FormatPNG, sub.Format)
}

func TestSubmit_InvalidFormat(t *testing.T) {
	api := &fakeAPI{}
	o := New(api, defaultConfig)

	_, err := o.Submit(context.Background(), core.ExportRequest{Format: "DOCX"})
	var invalid *core.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, api.submits)
}

func TestPollStatus_ValidatesRef(t *testing.T) {
	api := &fakeAPI{}
	o := New(api, defaultConfig)

	_, err := o.PollStatus(context.Background(), core.ExportRef{ExportID: "exp-1"})
	var missing *core.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"reportId", "workspaceId"}, missing.Params)
	assert.Zero(t, api.polls)
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	o := New(&fakeAPI{}, defaultConfig)
	o.running.Store(true)

	_, err := o.Run(context.Background(), core.ExportRequest{})
	assert.True(t, errors.Is(err, ErrExportInProgress))
}

func TestRun_ContextCancelled(t *testing.T) {
	api := &fakeAPI{statuses: []core.ExportJob{running(5)}}
	fc := clocktesting.NewFakeClock(time.Now())
	o := New(api, defaultConfig, WithTimer(NewClockTimer(fc)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := o.Run(ctx, core.ExportRequest{})
		done <- err
	}()

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestPollPolicy(t *testing.T) {
	o := New(&fakeAPI{}, defaultConfig)
	b := o.PollPolicy(context.Background())

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		require.Equal(t, DefaultPollInterval, b.NextBackOff())
	}
	assert.Less(t, b.NextBackOff(), time.Duration(0))
}
