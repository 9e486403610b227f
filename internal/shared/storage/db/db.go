package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"docforms-backend/internal/shared/telemetry"
)

// Options sizes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerPool suits the long-running API process.
func ServerPool() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// MigratePool is a single connection for one-shot migrations.
func MigratePool() Options {
	o := ServerPool()
	o.MaxOpenConns = 1
	o.MaxIdleConns = 1
	return o
}

// WithEnv applies DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME,
// DB_CONN_MAX_IDLE_TIME and DB_PING_TIMEOUT. Invalid values are logged and ignored.
func (o Options) WithEnv(lookup func(string) (string, bool)) Options {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &o.MaxOpenConns,
		"DB_MAX_IDLE_CONNS": &o.MaxIdleConns,
	}
	for key, dst := range ints {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v < 0 {
			telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
			continue
		}
		*dst = v
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &o.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &o.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &o.PingTimeout,
	}
	for key, dst := range durations {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil || v < 0 {
			telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
			continue
		}
		*dst = v
	}
	return o
}

var openDB = sql.Open

// Open connects to Postgres through pgx and pings before returning.
func Open(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	opts = withDefaults(opts)
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"max_open": opts.MaxOpenConns,
		"max_idle": opts.MaxIdleConns,
	})
	return db, nil
}

func withDefaults(o Options) Options {
	d := ServerPool()
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = d.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = d.MaxIdleConns
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if o.ConnMaxIdleTime <= 0 {
		o.ConnMaxIdleTime = d.ConnMaxIdleTime
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = d.PingTimeout
	}
	return o
}
