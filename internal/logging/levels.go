package logging

import "log/slog"

// Custom levels extend slog's four built-in levels with a TRACE level
// below Debug and an OFF level above Error, matching the severities
// gcsfuse's logger exposes (TRACE, DEBUG, INFO, WARNING, ERROR, OFF).
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(16)
)

func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a configuration string to a slog.Level, defaulting to
// LevelInfo for an unrecognized value.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace", "TRACE":
		return LevelTrace
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warning", "WARNING", "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "off", "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}
