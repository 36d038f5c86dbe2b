package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"sideseeing-report/internal/config"
)

// New builds the process logger. Reports are files, so logs go to w
// (stderr from main) and never mix with generated output.
func New(cfg config.Config, w io.Writer, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  cfg.LogLevel <= slog.LevelDebug,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
