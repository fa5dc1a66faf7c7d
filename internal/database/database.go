// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package database stores users, rooms and room participants.
//
// Two drivers are supported behind the same SQL: an embedded DuckDB file
// (the default) and PostgreSQL through pgx. Queries use $n placeholders,
// TEXT identifiers and explicit timestamps so they run unchanged on both.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/metrics"
)

// DB wraps the SQL connection pool and provides data access methods
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	driver string

	// now is truncated to the microsecond precision both drivers store.
	// now and newCode are replaceable in tests.
	now     func() time.Time
	newCode func() (string, error)
}

// New opens the configured database and applies pending migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.Migrate(ctx); err != nil {
		closeQuietly(db.conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// Open connects to the configured database without touching the schema.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverDuckDB
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		driver:  driver,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newCode: GenerateRoomCode,
	}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	logging.Info().Str("driver", driver).Msg("Database connected")
	return db, nil
}

// dataSource maps the configuration to a database/sql driver name and DSN.
func dataSource(cfg *config.DatabaseConfig) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverDuckDB, "":
		if cfg.Path != ":memory:" {
			// Ensure parent directory exists for database file
			dbDir := filepath.Dir(cfg.Path)
			if dbDir != "" && dbDir != "." {
				if err := os.MkdirAll(dbDir, 0o750); err != nil {
					return "", "", fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
				}
			}
		}
		// Extensions are not needed; keep DuckDB from reaching the network.
		return "duckdb", cfg.Path + "?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", nil
	case config.DriverPostgres:
		return "pgx", cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (db *DB) configureConnectionPool() {
	if db.cfg.MaxOpenConns > 0 {
		db.conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
	}
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close releases the connection pool. DuckDB files are checkpointed first so
// the next start does not replay the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.driver == config.DriverDuckDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}

// RecordPoolStats publishes the open connection count.
func (db *DB) RecordPoolStats() {
	metrics.DBOpenConnections.Set(float64(db.conn.Stats().OpenConnections))
}

// observe records the duration and outcome of a query.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err, errorType(err))
}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// closeQuietly closes a resource and explicitly ignores any error
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
