package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide structured logger. Level accepts the
// usual slog names (debug, info, warn, error); anything unparseable falls
// back to info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
