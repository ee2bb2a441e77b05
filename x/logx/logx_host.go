//go:build !(rp2040 || rp2350)

package logx

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide handler. format is "text" or "json";
// level is one of debug/info/warn/error (unknown values mean info).
func Setup(level, format string) {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func Debug(msg string, kv ...any) { slog.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { slog.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { slog.Warn(msg, kv...) }
func Error(msg string, kv ...any) { slog.Error(msg, kv...) }
