package logger

import (
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = newDefault()
)

func newDefault() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Replace swaps the package logger; intended for tests and main wiring.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l != nil {
		log = l
	}
}

func Info(msg string)  { get().Info(msg) }
func Warn(msg string)  { get().Warn(msg) }
func Error(msg string) { get().Error(msg) }

// InfoJ emits a structured audit line: one stable event name plus a flat
// field map. Keys are sorted so output is reproducible.
func InfoJ(event string, fields map[string]any) { get().Info(event, toFields(fields)...) }

// ErrorJ is InfoJ at error level.
func ErrorJ(event string, fields map[string]any) { get().Error(event, toFields(fields)...) }

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func toFields(m map[string]any) []zap.Field {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, m[k]))
	}
	return out
}
