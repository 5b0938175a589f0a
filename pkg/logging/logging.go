// Package logging wraps log/slog the way the teacher's pkg/logging wraps
// it: a single overridable default logger, initialized to a text handler
// on stderr, that the rest of the module reads through DefaultLogger rather
// than calling slog.Default() directly.
package logging

import (
	"log/slog"
	"os"
)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// DefaultLogger returns the process-wide logger.
func DefaultLogger() *slog.Logger { return defaultLogger }

// SetDefaultLogger overrides the process-wide logger, e.g. to switch to a
// JSON handler or raise the level; call once during process start.
func SetDefaultLogger(l *slog.Logger) { defaultLogger = l }

// With is a small convenience matching the teacher's call style of
// attaching identifying fields (vrf, prefix, client) to every log line
// about a route, per spec §7's "user-visible failures always carry prefix,
// VRF, and client identifiers".
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}
