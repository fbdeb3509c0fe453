// Package logging wraps a process-wide zerolog logger and the request-scoped
// helpers used by the HTTP layer.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config ログ設定
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init はグローバルロガーを設定します。起動時に一度だけ呼び出してください。
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	mu.Lock()
	logger = zerolog.New(out).With().Timestamp().Logger()
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug starts a debug event.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info event.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn event.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error event.
func Error() *zerolog.Event { l := Logger(); return l.Error() }

// Fatal starts a fatal event; the process exits after Msg.
func Fatal() *zerolog.Event { l := Logger(); return l.Fatal() }

type contextKey string

const requestIDKey contextKey = "request_id"

// GenerateRequestID リクエストIDを生成
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a context carrying the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger annotated with the context's request ID.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}
