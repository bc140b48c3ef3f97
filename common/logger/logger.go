// Package logger provides the process-wide logger for the retrieval
// pipeline. It wraps zap behind package-level printf-style helpers so call
// sites stay terse in hot paths.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = newDefault()
)

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Init replaces the process logger, e.g. with a development logger in the
// entrypoint or zap.NewNop() in tests.
func Init(l *zap.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	base = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) { current().Debugf(format, args...) }

// Infof logs an info message.
func Infof(format string, args ...any) { current().Infof(format, args...) }

// Warnf logs a warning message.
func Warnf(format string, args ...any) { current().Warnf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...any) { current().Errorf(format, args...) }

// Sync flushes buffered log entries. Call on shutdown.
func Sync() { _ = current().Sync() }
