package logger

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type loggerContextKey struct{}

var defaultLogger = logrus.New()

func init() {
	defaultLogger.SetOutput(os.Stdout)
	defaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// LoggerOption configures the default logger
type LoggerOption func(*logrus.Logger)

func WithLogLevel(level logrus.Level) LoggerOption {
	return func(l *logrus.Logger) { l.SetLevel(level) }
}

func WithJSONFormatter() LoggerOption {
	return func(l *logrus.Logger) { l.SetFormatter(&logrus.JSONFormatter{}) }
}

func SetLoggerOptions(opts ...LoggerOption) {
	for _, opt := range opts {
		opt(defaultLogger)
	}
}

// NewContextWithFields returns a new context whose logger carries the given fields in addition
// to any fields already present on the parent's logger.
func NewContextWithFields(parent context.Context, fields logrus.Fields) context.Context {
	return NewContextWithLogger(parent, fields, For(parent).Logger)
}

func NewContextWithLogger(parent context.Context, fields logrus.Fields, logger *logrus.Logger) context.Context {
	entry := For(parent)
	if logger != entry.Logger {
		entry = logrus.NewEntry(logger).WithFields(entry.Data)
	}

	entry = entry.WithFields(fields)

	if gc, ok := parent.(*gin.Context); ok {
		gc.Set(loggerContextKey{}.String(), entry)
		return gc
	}

	return context.WithValue(parent, loggerContextKey{}, entry)
}

// For returns the logger attached to ctx, falling back to the default logger. A nil context is
// allowed for process-level logging.
func For(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return logrus.NewEntry(defaultLogger)
	}

	if gc, ok := ctx.(*gin.Context); ok {
		if entry, ok := gc.Value(loggerContextKey{}.String()).(*logrus.Entry); ok {
			return entry
		}
		if gc.Request == nil {
			return logrus.NewEntry(defaultLogger)
		}
		ctx = gc.Request.Context()
	}

	if entry, ok := ctx.Value(loggerContextKey{}).(*logrus.Entry); ok {
		return entry
	}

	// a gin context wrapped by another context only answers string keys
	if entry, ok := ctx.Value(loggerContextKey{}.String()).(*logrus.Entry); ok {
		return entry
	}

	return logrus.NewEntry(defaultLogger).WithContext(ctx)
}

func (loggerContextKey) String() string {
	return "logger.entry"
}
