package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sideseeing-report/internal/config"
	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/httpapi"
)

// Preview serves a written report until ctx is cancelled.
func Preview(ctx context.Context, cfg config.Config, reportPath string) error {
	info, err := os.Stat(reportPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrInvalidInputPath, reportPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s: is a directory", errs.ErrInvalidInputPath, reportPath)
	}

	srv := httpapi.NewServer(cfg, httpapi.NewMux(reportPath))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr, "report", reportPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
