package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the JSON logger used by every Lambda entrypoint, with the level
// taken from the LOG_LEVEL environment variable.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(),
	}))
}

// Level returns the log level based on the LOG_LEVEL environment variable.
// If LOG_LEVEL is not set or invalid, it defaults to Info level.
//
// Supported values (case-insensitive): DEBUG, INFO, WARN or WARNING, ERROR.
func Level() slog.Level {
	levelStr := strings.ToUpper(strings.TrimSpace(os.Getenv("LOG_LEVEL")))

	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
