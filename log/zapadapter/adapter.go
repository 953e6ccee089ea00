// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/c0nn3r/psycopg3/adapt"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (pl *Logger) Log(ctx context.Context, level adapt.LogLevel, msg string, data map[string]interface{}) {
	fields := make([]zapcore.Field, len(data))
	i := 0
	for k, v := range data {
		fields[i] = zap.Any(k, v)
		i++
	}

	switch level {
	case adapt.LogLevelTrace:
		pl.logger.Debug(msg, append(fields, zap.Stringer("ADAPT_LOG_LEVEL", level))...)
	case adapt.LogLevelDebug:
		pl.logger.Debug(msg, fields...)
	case adapt.LogLevelInfo:
		pl.logger.Info(msg, fields...)
	case adapt.LogLevelWarn:
		pl.logger.Warn(msg, fields...)
	case adapt.LogLevelError:
		pl.logger.Error(msg, fields...)
	default:
		pl.logger.Error(msg, append(fields, zap.Stringer("INVALID_ADAPT_LOG_LEVEL", level))...)
	}
}
