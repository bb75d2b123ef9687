// Package logger provides levelled key/value logging with PII redaction.
//
// Values logged under keys that look like addresses ("email", "to",
// "reply_to", ...) are masked, and addresses embedded in any other value
// are masked too, so submitter data never lands in logs verbatim.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// ParseLevel maps a config string to a Level. Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a zap-backed structured logger with optional PII redaction.
type Logger struct {
	mu        sync.RWMutex
	sugar     *zap.SugaredLogger
	level     zap.AtomicLevel
	redactPII bool
}

var defaultLogger = newLogger(os.Stderr, INFO)

func newLogger(w io.Writer, l Level) *Logger {
	atom := zap.NewAtomicLevelAt(zapLevels[l])
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), atom)
	return &Logger{
		sugar:     zap.New(core).Sugar(),
		level:     atom,
		redactPII: true,
	}
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level.SetLevel(zapLevels[l]) }

// SetRedactPII enables or disables PII redaction for the default logger.
func SetRedactPII(r bool) {
	defaultLogger.mu.Lock()
	defaultLogger.redactPII = r
	defaultLogger.mu.Unlock()
}

// SetOutput redirects the default logger, keeping its level. Used by tests
// to capture output.
func SetOutput(w io.Writer) {
	lvl := defaultLogger.level.Level()
	l := newLogger(w, INFO)
	l.level.SetLevel(lvl)
	defaultLogger.mu.Lock()
	defaultLogger.sugar = l.sugar
	defaultLogger.level = l.level
	defaultLogger.mu.Unlock()
}

// Sync flushes buffered entries.
func Sync() error { return defaultLogger.sugar.Sync() }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID used by the *Ctx helpers.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID from ctx, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// InfoCtx logs at INFO, adding request_id when ctx carries one.
func InfoCtx(ctx context.Context, msg string, fields ...interface{}) {
	defaultLogger.log(INFO, msg, withRequestID(ctx, fields)...)
}

// WarnCtx logs at WARN, adding request_id when ctx carries one.
func WarnCtx(ctx context.Context, msg string, fields ...interface{}) {
	defaultLogger.log(WARN, msg, withRequestID(ctx, fields)...)
}

// ErrorCtx logs at ERROR, adding request_id when ctx carries one.
func ErrorCtx(ctx context.Context, msg string, fields ...interface{}) {
	defaultLogger.log(ERROR, msg, withRequestID(ctx, fields)...)
}

func withRequestID(ctx context.Context, fields []interface{}) []interface{} {
	if id, ok := RequestIDFromContext(ctx); ok {
		return append(fields, "request_id", id)
	}
	return fields
}

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	sugar, redact := l.sugar, l.redactPII
	l.mu.RUnlock()

	kv := make([]interface{}, 0, len(fields))
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fields[i+1]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		if s, ok := val.(string); ok && redact {
			val = redactPIIValue(key, s)
		}
		kv = append(kv, key, val)
	}
	if redact {
		msg = emailRegex.ReplaceAllStringFunc(msg, RedactEmail)
	}

	switch level {
	case DEBUG:
		sugar.Debugw(msg, kv...)
	case WARN:
		sugar.Warnw(msg, kv...)
	case ERROR:
		sugar.Errorw(msg, kv...)
	default:
		sugar.Infow(msg, kv...)
	}
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	switch key = strings.ToLower(key); {
	case strings.Contains(key, "email"), key == "to", key == "reply_to", key == "recipient":
		return RedactEmail(val)
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
