package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"k8s.io/utils/clock"
)

// job is a registered task plus the bookkeeping of its runs.
type job struct {
	def          TaskDefinition
	clock        clock.PassiveClock
	registeredAt time.Time

	mu       sync.Mutex
	running  bool
	runs     int
	failures int
	last     *RunRecord
	logs     []LogEntry
}

func newJob(def TaskDefinition, c clock.PassiveClock) *job {
	if def.Timeout <= 0 {
		def.Timeout = DefaultRunTimeout
	}
	return &job{def: def, clock: c, registeredAt: c.Now()}
}

// begin marks the job running and drops the logs of the previous run.
// It reports false when a run is already in progress.
func (j *job) begin() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return false
	}
	j.running = true
	j.logs = nil
	return true
}

func (j *job) finish(rec RunRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
	j.runs++
	if rec.Outcome != OutcomeSuccess {
		j.failures++
	}
	j.last = &rec
}

func (j *job) run(parent context.Context) {
	zl := log.With().Str("task", j.def.Name).Logger()
	if !j.begin() {
		zl.Warn().Msg("task is already running, skipping execution")
		return
	}

	logger := runLogger(j, zl)
	logger.Info("starting task execution")

	ctx, cancel := context.WithTimeout(parent, j.def.Timeout)
	defer cancel()

	rec := RunRecord{StartedAt: j.clock.Now(), Outcome: OutcomeSuccess}
	err := j.def.Handler(ctx, logger)
	rec.Duration = j.clock.Since(rec.StartedAt)

	switch {
	case err == nil:
		logger.Info("task completed successfully in %s", rec.Duration)
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		rec.Outcome, rec.Error = OutcomeTimeout, err.Error()
		logger.Error("task timed out after %s", j.def.Timeout)
	default:
		rec.Outcome, rec.Error = OutcomeFailed, err.Error()
		logger.Error("task failed after %s: %v", rec.Duration, err)
	}
	j.finish(rec)
}

func (j *job) status() TaskStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := TaskStatus{
		Name:     j.def.Name,
		Interval: j.def.Interval,
		Running:  j.running,
		Runs:     j.runs,
		Failures: j.failures,
	}
	if j.last != nil {
		last := *j.last
		s.Last = &last
	}
	if j.def.Interval > 0 {
		from := j.registeredAt
		if j.last != nil {
			from = j.last.StartedAt.Add(j.last.Duration)
		}
		s.NextRun = from.Add(j.def.Interval)
	}
	return s
}

func (j *job) snapshotLogs() []LogEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]LogEntry(nil), j.logs...)
}

func (j *job) appendLog(level, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.logs = append(j.logs, LogEntry{Time: j.clock.Now(), Level: level, Message: msg})
	if over := len(j.logs) - MaxLogsPerTask; over > 0 {
		j.logs = j.logs[over:]
	}
}
