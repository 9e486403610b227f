package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"docforms-backend/internal/shared/config"
	"docforms-backend/internal/shared/storage/db"
	"docforms-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("migrate.config_invalid", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.MigratePool().WithEnv(nil))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", nil)
}
