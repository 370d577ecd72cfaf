package tasks

import (
	"github.com/rs/zerolog"

	"github.com/Ayaan2907/powerBiChat/internal/logging"
)

// runLogger logs a task run to zlog and keeps the lines on the job,
// where GET /v1/admin/tasks/{name}/logs reads them.
func runLogger(j *job, zlog zerolog.Logger) logging.InternalLogger {
	store := logging.SinkFunc(func(level zerolog.Level, msg string) {
		j.appendLog(level.String(), msg)
	})
	return logging.NewMultiLogger(logging.NewZLogger(zlog), store)
}
