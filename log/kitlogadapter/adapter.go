package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"

	"github.com/c0nn3r/psycopg3/adapt"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level adapt.LogLevel, msg string, data map[string]interface{}) {
	logger := l.l
	for k, v := range data {
		logger = log.With(logger, k, v)
	}

	switch level {
	case adapt.LogLevelTrace:
		logger.Log("ADAPT_LOG_LEVEL", level, "msg", msg)
	case adapt.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case adapt.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case adapt.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case adapt.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_ADAPT_LOG_LEVEL", level, "error", msg)
	}
}
