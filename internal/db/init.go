// Package db opens the local store database and owns its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SchemaVersion is the layout the code expects. Any other stored version,
// including none, makes Migrate drop and recreate every table.
const SchemaVersion = 3

// Supported database/sql driver names.
const (
	// DriverSQLite3 is the cgo SQLite driver used on devices.
	DriverSQLite3 = "sqlite3"
	// DriverSQLite is the pure-Go SQLite driver.
	DriverSQLite = "sqlite"
	// DriverPostgres targets a shared PostgreSQL database.
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for driver names not listed above.
var ErrUnknownDriver = errors.New("unknown database driver")

const (
	sqliteIdentity   = "INTEGER PRIMARY KEY AUTOINCREMENT"
	postgresIdentity = "BIGSERIAL PRIMARY KEY"
)

// entityTables are listed in dependency order; drops walk it backwards.
var entityTables = []string{"users", "conversions", "tutor_requests", "sessions"}

const schemaVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`

// schema holds the DDL; {identity} is replaced by the dialect's identity column.
var schema = []string{
	`CREATE TABLE users (
    id {identity},
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('student', 'tutor')),
    created_at BIGINT NOT NULL
)`,
	`CREATE INDEX idx_users_username ON users (username)`,
	`CREATE INDEX idx_users_email ON users (email)`,
	`CREATE TABLE conversions (
    id {identity},
    username TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
    input_value TEXT NOT NULL,
    input_base INTEGER NOT NULL CHECK (input_base IN (2, 8, 10, 16)),
    output_value TEXT NOT NULL,
    output_base INTEGER NOT NULL CHECK (output_base IN (2, 8, 10, 16)),
    created_at BIGINT NOT NULL
)`,
	`CREATE INDEX idx_conversions_user_time ON conversions (username, created_at)`,
	`CREATE TABLE tutor_requests (
    id {identity},
    student_username TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
    tutor_username TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
    status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'declined')),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	`CREATE UNIQUE INDEX ux_tutor_requests_active
    ON tutor_requests (student_username, tutor_username)
    WHERE status IN ('pending', 'accepted')`,
	`CREATE INDEX idx_tutor_requests_tutor ON tutor_requests (tutor_username)`,
	`CREATE TABLE sessions (
    id {identity},
    request_id BIGINT NOT NULL UNIQUE REFERENCES tutor_requests (id) ON DELETE CASCADE,
    student_username TEXT NOT NULL,
    tutor_username TEXT NOT NULL,
    topic TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('scheduled', 'completed', 'cancelled')),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	`CREATE INDEX idx_sessions_student ON sessions (student_username)`,
	`CREATE INDEX idx_sessions_tutor ON sessions (tutor_username)`,
}

// Open connects to the database named by driver and dsn, verifies the
// connection and brings the schema to SchemaVersion.
//
// SQLite DSNs without query parameters get foreign keys enabled and a busy
// timeout so that a handful of in-process callers can share the file.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*sql.DB, error) {
	switch driver {
	case DriverSQLite3:
		dsn = withParams(dsn, "_foreign_keys=on&_busy_timeout=5000")
	case DriverSQLite:
		dsn = withParams(dsn, "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := Migrate(ctx, db, driver, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate compares the stored schema version with SchemaVersion. When they
// differ every entity table is dropped and recreated inside one transaction.
// This is the store's only migration policy: an upgrade discards all rows.
func Migrate(ctx context.Context, db *sql.DB, driver string, log *zap.Logger) error {
	if _, err := db.ExecContext(ctx, schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	if current == SchemaVersion {
		log.Debug("schema up to date", zap.Int("version", current))
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := len(entityTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+entityTables[i]); err != nil {
			return fmt.Errorf("drop %s: %w", entityTables[i], err)
		}
	}

	identity := sqliteIdentity
	if driver == DriverPostgres {
		identity = postgresIdentity
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, strings.ReplaceAll(stmt, "{identity}", identity)); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("reset schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, SchemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if current != 0 {
		log.Warn("schema version changed, tables recreated and data discarded",
			zap.Int("from", current), zap.Int("to", SchemaVersion))
	} else {
		log.Info("schema created", zap.Int("version", SchemaVersion))
	}
	return nil
}

func withParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + params
}
