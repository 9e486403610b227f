package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"docforms-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Migrate applies the embedded migrations. A nil database is a no-op so
// memory-backed runs can share the bootstrap path.
func Migrate(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	version, err := goose.GetDBVersion(database)
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}
