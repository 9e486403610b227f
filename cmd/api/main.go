package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docforms-backend/internal/bootstrap"
	"docforms-backend/internal/shared/config"
	"docforms-backend/internal/shared/server"
	"docforms-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("api.config_invalid", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Info("api.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("api.server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("api.stopped", nil)
}
