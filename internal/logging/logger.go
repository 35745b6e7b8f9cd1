// Package logging is the logger every instapaper-mcp component writes through.
// Records go to stderr; stdout carries the MCP stdio transport.
package logging

// file: internal/logging/logger.go

import (
	"context"
	"sync"
)

// Logger is the structured logger handed to components. Arguments are
// alternating key/value pairs, as with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// WithContext binds ctx to every record the returned logger emits.
	WithContext(ctx context.Context) Logger
	// WithField returns a logger that adds key=value to every record.
	WithField(key string, value any) Logger
}

// NoopLogger discards everything. It is the default until InitLogging runs
// and the logger tests hand to clients and servers.
type NoopLogger struct{}

func (l *NoopLogger) Debug(string, ...any)               {}
func (l *NoopLogger) Info(string, ...any)                {}
func (l *NoopLogger) Warn(string, ...any)                {}
func (l *NoopLogger) Error(string, ...any)               {}
func (l *NoopLogger) WithContext(context.Context) Logger { return l }
func (l *NoopLogger) WithField(string, any) Logger       { return l }

var noop Logger = &NoopLogger{}

// GetNoopLogger returns the shared NoopLogger.
func GetNoopLogger() Logger {
	return noop
}

var (
	rootMu sync.RWMutex
	root   = noop
)

// SetDefaultLogger replaces the root logger GetLogger derives from. Nil is ignored.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		return
	}
	rootMu.Lock()
	root = logger
	rootMu.Unlock()
}

// GetLogger returns the root logger tagged with component=name.
func GetLogger(name string) Logger {
	rootMu.RLock()
	l := root
	rootMu.RUnlock()
	return l.WithField("component", name)
}
