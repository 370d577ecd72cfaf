package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
)

var ErrExportInProgress = errors.New("an export is already running")

// errStillRunning keeps the poll loop going; it never leaves this package.
var errStillRunning = errors.New("export still running")

// API is the gateway surface the orchestrator drives.
type API interface {
	SubmitExport(ctx context.Context, req core.ExportRequest) (*core.ExportSubmission, error)
	ExportStatus(ctx context.Context, ref core.ExportRef) (*core.ExportJob, error)
	DownloadExport(ctx context.Context, ref core.ExportRef) (*core.ExportFile, error)
}

// ConfigProvider supplies the report coordinates of the current embed config.
type ConfigProvider interface {
	Current() *core.EmbedConfig
}

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseSubmitting  Phase = "submitting"
	PhasePolling     Phase = "polling"
	PhaseDownloading Phase = "downloading"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
	PhaseTimedOut    Phase = "timed_out"
)

// Progress is emitted on every phase change and every status check.
type Progress struct {
	Phase    Phase
	ExportID string
	Attempt  int
	Percent  int
	Message  string
}

type Result struct {
	Submission *core.ExportSubmission
	Job        *core.ExportJob
	File       *core.ExportFile
	Attempts   int
}

// Orchestrator drives one export at a time from submission to download.
type Orchestrator struct {
	api          API
	configs      ConfigProvider
	pollInterval time.Duration
	maxAttempts  int
	timer        backoff.Timer
	progress     func(Progress)

	running atomic.Bool
}

type Option func(*Orchestrator)

func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.pollInterval = d
	}
}

func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		o.maxAttempts = n
	}
}

func WithProgress(fn func(Progress)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithTimer replaces the wait between status checks.
func WithTimer(t backoff.Timer) Option {
	return func(o *Orchestrator) {
		o.timer = t
	}
}

func New(api API, configs ConfigProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:          api,
		configs:      configs,
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxAttempts,
		progress:     func(Progress) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts an export job. Missing identifiers are resolved from the
// current embed config; if still missing, no request is sent.
func (o *Orchestrator) Submit(ctx context.Context, req core.ExportRequest) (*core.ExportSubmission, error) {
	resolved, err := o.resolve(req)
	if err != nil {
		return nil, err
	}
	return o.api.SubmitExport(ctx, resolved)
}

func (o *Orchestrator) resolve(req core.ExportRequest) (core.ExportRequest, error) {
	if req.Format == "" {
		req.Format = core.FormatPDF
	}
	if _, err := core.ParseExportFormat(string(req.Format)); err != nil {
		return req, err
	}

	if req.ReportID == "" || req.WorkspaceID == "" {
		if cfg := o.configs.Current(); cfg != nil {
			if req.ReportID == "" {
				req.ReportID = cfg.ReportID
			}
			if req.WorkspaceID == "" {
				req.WorkspaceID = cfg.WorkspaceID
			}
		}
	}

	var missing []string
	if req.ReportID == "" {
		missing = append(missing, "reportId")
	}
	if req.WorkspaceID == "" {
		missing = append(missing, "workspaceId")
	}
	if len(missing) > 0 {
		return req, &core.MissingParameterError{Params: missing}
	}
	return req, nil
}

// PollStatus performs a single status check.
func (o *Orchestrator) PollStatus(ctx context.Context, ref core.ExportRef) (*core.ExportJob, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return o.api.ExportStatus(ctx, ref)
}

// PollPolicy is the wait policy between status checks: a fixed interval,
// at most maxAttempts checks in total.
func (o *Orchestrator) PollPolicy(ctx context.Context) backoff.BackOffContext {
	retries := uint64(0)
	if o.maxAttempts > 1 {
		retries = uint64(o.maxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(o.pollInterval), retries), ctx)
}

// WaitForCompletion polls until the job succeeds, fails, or the attempt cap is reached.
// The first check happens immediately.
func (o *Orchestrator) WaitForCompletion(ctx context.Context, ref core.ExportRef) (*core.ExportJob, int, error) {
	if err := ref.Validate(); err != nil {
		return nil, 0, err
	}

	attempts := 0
	var last *core.ExportJob

	op := func() error {
		attempts++
		job, err := o.api.ExportStatus(ctx, ref)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = job

		switch {
		case job.IsCompleted():
			return nil
		case job.IsFailed():
			return backoff.Permanent(&core.ExportFailedError{ExportID: ref.ExportID, Status: job.Status})
		default:
			// NotStarted, Running and anything unknown keep polling
			o.emit(Progress{
				Phase:    PhasePolling,
				ExportID: ref.ExportID,
				Attempt:  attempts,
				Percent:  job.PercentComplete,
				Message:  fmt.Sprintf("Export running... %d%%", job.PercentComplete),
			})
			return errStillRunning
		}
	}

	notify := func(err error, wait time.Duration) {
		log.Ctx(ctx).Debug().
			Str("export_id", ref.ExportID).
			Int("attempt", attempts).
			Dur("wait", wait).
			Msg("export not finished yet")
	}

	var err error
	if o.timer != nil {
		err = backoff.RetryNotifyWithTimer(op, o.PollPolicy(ctx), notify, o.timer)
	} else {
		err = backoff.RetryNotify(op, o.PollPolicy(ctx), notify)
	}

	if errors.Is(err, errStillRunning) {
		return last, attempts, &core.ExportTimeoutError{ExportID: ref.ExportID, Attempts: attempts}
	}
	return last, attempts, err
}

// Download fetches the artifact of a finished job. The caller must close the body.
func (o *Orchestrator) Download(ctx context.Context, ref core.ExportRef) (*core.ExportFile, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return o.api.DownloadExport(ctx, ref)
}

// Run submits, polls and downloads one export. Only one Run may be active at a time.
func (o *Orchestrator) Run(ctx context.Context, req core.ExportRequest) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer o.running.Store(false)

	o.emit(Progress{Phase: PhaseSubmitting, Message: "Initializing export..."})

	sub, err := o.Submit(ctx, req)
	if err != nil {
		o.fail(PhaseFailed, "", 0, err)
		return nil, err
	}
	res := &Result{Submission: sub}

	ref := core.ExportRef{ExportID: sub.ExportID, ReportID: sub.ReportID, WorkspaceID: sub.WorkspaceID}
	o.emit(Progress{Phase: PhasePolling, ExportID: sub.ExportID, Message: "Export job created, checking status..."})

	job, attempts, err := o.WaitForCompletion(ctx, ref)
	res.Job, res.Attempts = job, attempts
	if err != nil {
		phase := PhaseFailed
		var timeout *core.ExportTimeoutError
		if errors.As(err, &timeout) {
			phase = PhaseTimedOut
		}
		o.fail(phase, sub.ExportID, attempts, err)
		return res, err
	}

	o.emit(Progress{
		Phase:    PhaseDownloading,
		ExportID: sub.ExportID,
		Attempt:  attempts,
		Percent:  100,
		Message:  "Export completed! Downloading...",
	})

	file, err := o.Download(ctx, ref)
	if err != nil {
		o.fail(PhaseFailed, sub.ExportID, attempts, err)
		return res, err
	}
	res.File = file

	o.emit(Progress{
		Phase:    PhaseDone,
		ExportID: sub.ExportID,
		Attempt:  attempts,
		Percent:  100,
		Message:  "Export completed successfully!",
	})
	return res, nil
}

func (o *Orchestrator) fail(phase Phase, exportID string, attempts int, err error) {
	msg := "Export failed: " + err.Error()
	if phase == PhaseTimedOut {
		msg = "Export timed out: " + err.Error()
	}
	o.emit(Progress{Phase: phase, ExportID: exportID, Attempt: attempts, Message: msg})
}

func (o *Orchestrator) emit(p Progress) {
	o.progress(p)
}
