package tasks

import (
	"context"
	"time"

	"github.com/Ayaan2907/powerBiChat/internal/logging"
)

// TaskFunc is one maintenance job. Whatever it writes to logger is kept
// with the task until its next run starts.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

type TaskDefinition struct {
	Name     string
	Interval time.Duration // zero: on demand only
	Timeout  time.Duration // zero: DefaultRunTimeout
	Handler  TaskFunc
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
)

// RunRecord describes a finished run.
type RunRecord struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
}

type TaskStatus struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval,omitempty"`
	Running  bool          `json:"running,omitempty"`
	Runs     int           `json:"runs"`
	Failures int           `json:"failures"`
	Last     *RunRecord    `json:"last,omitempty"`
	NextRun  time.Time     `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
