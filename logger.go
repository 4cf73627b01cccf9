package jobstamp

import (
	"context"
	"io"
	"log/slog"
	"sort"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around logging stack
// (see log/zap, log/logrus, log/slog).
// If Logger is nil in Options, logging is disabled unless Config.Debug is set.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// textLogger is the fallback used when debug output is requested and no
// Logger was configured.
type textLogger struct{ l *slog.Logger }

func newTextLogger(w io.Writer) textLogger {
	return textLogger{l: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
}

// log emits attributes in key order so lines are comparable across runs.
func (t textLogger) log(lvl slog.Level, msg string, f Fields) {
	ks := make([]string, 0, len(f))
	for k := range f {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	attrs := make([]slog.Attr, 0, len(f))
	for _, k := range ks {
		attrs = append(attrs, slog.Any(k, f[k]))
	}
	t.l.LogAttrs(context.Background(), lvl, msg, attrs...)
}

func (t textLogger) Debug(msg string, f Fields) { t.log(slog.LevelDebug, msg, f) }
func (t textLogger) Info(msg string, f Fields)  { t.log(slog.LevelInfo, msg, f) }
func (t textLogger) Warn(msg string, f Fields)  { t.log(slog.LevelWarn, msg, f) }
func (t textLogger) Error(msg string, f Fields) { t.log(slog.LevelError, msg, f) }
