// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/c0nn3r/psycopg3/adapt"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level adapt.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case adapt.LogLevelTrace:
		logger.WithField("ADAPT_LOG_LEVEL", level).Debug(msg)
	case adapt.LogLevelDebug:
		logger.Debug(msg)
	case adapt.LogLevelInfo:
		logger.Info(msg)
	case adapt.LogLevelWarn:
		logger.Warn(msg)
	case adapt.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_ADAPT_LOG_LEVEL", level).Error(msg)
	}
}
