package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the global JSON logger. LOG_LEVEL (debug, info, warn,
// error) controls verbosity and defaults to info.
func Setup() {
	slog.SetDefault(slog.New(StdoutHandler()))
}

// StdoutHandler builds the JSON stdout handler on its own, for callers that
// compose it with other handlers.
func StdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
