package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// InternalLogger is used by maintenance tasks for logging.
// Task runs keep their own copy of what they logged.
type InternalLogger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SinkFunc receives one formatted line.
type SinkFunc func(level zerolog.Level, msg string)

var _ InternalLogger = SinkFunc(nil)

func (f SinkFunc) Info(format string, args ...any) {
	f(zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

func (f SinkFunc) Warn(format string, args ...any) {
	f(zerolog.WarnLevel, fmt.Sprintf(format, args...))
}

func (f SinkFunc) Error(format string, args ...any) {
	f(zerolog.ErrorLevel, fmt.Sprintf(format, args...))
}

// NewZLogger writes every line to zlog at its level.
func NewZLogger(zlog zerolog.Logger) SinkFunc {
	return func(level zerolog.Level, msg string) {
		zlog.WithLevel(level).Msg(msg)
	}
}

// NewMultiLogger fans every line out to loggers, in order.
func NewMultiLogger(loggers ...InternalLogger) SinkFunc {
	return func(level zerolog.Level, msg string) {
		for _, l := range loggers {
			switch level {
			case zerolog.WarnLevel:
				l.Warn("%s", msg)
			case zerolog.ErrorLevel:
				l.Error("%s", msg)
			default:
				l.Info("%s", msg)
			}
		}
	}
}
