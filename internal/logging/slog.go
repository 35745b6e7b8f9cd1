package logging

// file: internal/logging/slog.go

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level aliases the slog levels so callers do not need to import log/slog.
type Level = slog.Level

// Supported levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// levelVar is shared by every handler created here so SetLevel applies live.
var levelVar = new(slog.LevelVar)

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	l   *slog.Logger
	ctx context.Context
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		return GetNoopLogger()
	}
	return &slogLogger{l: l, ctx: context.Background()}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.DebugContext(s.ctx, msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.InfoContext(s.ctx, msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.WarnContext(s.ctx, msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.ErrorContext(s.ctx, msg, args...) }

func (s *slogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return s
	}
	return &slogLogger{l: s.l, ctx: ctx}
}

func (s *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{l: s.l.With(key, value), ctx: s.ctx}
}

// Redacted replaces the value of any attribute whose key names a secret.
const Redacted = "[REDACTED]"

// secretKeys are attribute keys whose values never reach the log output.
var secretKeys = map[string]struct{}{
	"password":           {},
	"x_auth_password":    {},
	"consumer_secret":    {},
	"consumersecret":     {},
	"oauth_token_secret": {},
	"token_secret":       {},
	"tokensecret":        {},
	"oauth_signature":    {},
}

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// InitLogging installs a JSON slog backend writing to w as the default logger.
// Attributes keyed like a credential are written as Redacted.
func InitLogging(level Level, w io.Writer) {
	levelVar.Set(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar, ReplaceAttr: redactSecrets})
	SetDefaultLogger(NewSlogLogger(slog.New(h)))
}

// SetupDefaultLogger configures stderr logging at the named level.
// Stdout is reserved for the MCP stdio transport.
func SetupDefaultLogger(level string) {
	InitLogging(ParseLevel(level), os.Stderr)
}

// SetLevel changes the level of every logger created by InitLogging.
func SetLevel(level Level) {
	levelVar.Set(level)
}

// IsDebugEnabled reports whether debug records are currently emitted.
func IsDebugEnabled() bool {
	return levelVar.Level() <= LevelDebug
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
