// Package logging provides the structured logging surface used across
// kryptocd: a small set of package-level severity functions backed by
// log/slog, with a JSON-or-text handler factory and an optional rotating
// file sink, mirroring gcsfuse's internal/logger package
// (defaultLoggerFactory, createJsonOrTextHandler, Tracef/Debugf/Infof/
// Warnf/Errorf).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type loggerFactory struct {
	format string // "text" or "json"
	prefix string
}

func (f *loggerFactory) createHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: f.replaceAttr,
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (f *loggerFactory) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		lvl, _ := a.Value.Any().(slog.Level)
		return slog.String("severity", severityName(lvl))
	case slog.MessageKey:
		if f.prefix != "" {
			return slog.String(a.Key, f.prefix+a.Value.String())
		}
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			return slog.String(a.Key, t.Format("2006/01/02 15:04:05.000000"))
		}
	}
	return a
}

var (
	mu            sync.Mutex
	programLevel  = &slog.LevelVar{}
	factory       = &loggerFactory{format: "text"}
	defaultLogger = slog.New(factory.createHandler(os.Stderr, programLevel))
)

// Configure rebuilds the default logger to write format ("text" or
// "json") records of at least level to w. It is the package's equivalent
// of gcsfuse's setLoggingLevel plus defaultLoggerFactory.format
// assignment, folded into one call since this module has no separate
// config layer.
func Configure(w io.Writer, format string, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	factory.format = format
	programLevel.Set(level)
	defaultLogger = slog.New(factory.createHandler(w, programLevel))
}

func log(level slog.Level, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	defaultLogger.Log(context.Background(), level, msg)
}

// Tracef logs at TRACE, below the standard Debug level: per-byte pump and
// fd-remap detail.
func Tracef(format string, args ...any) { log(LevelTrace, format, args...) }

// Debugf logs at DEBUG: spawn/wait/allocate/release lifecycle events.
func Debugf(format string, args ...any) { log(LevelDebug, format, args...) }

// Infof logs at INFO: image commits, manifest appends.
func Infof(format string, args ...any) { log(LevelInfo, format, args...) }

// Warnf logs at WARNING: a single Image attempt aborted but the run
// continues.
func Warnf(format string, args ...any) { log(LevelWarn, format, args...) }

// Errorf logs at ERROR: a failure that aborts the whole run.
func Errorf(format string, args ...any) { log(LevelError, format, args...) }
