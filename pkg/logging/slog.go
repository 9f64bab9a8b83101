package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger tagged with the service name. LOG_LEVEL
// accepts the slog level names (debug, info, warn, error).
func New(service string) *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			level = l
		}
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("service", service)
}
