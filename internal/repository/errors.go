// Package repository provides SQL persistence for users, conversion history
// and the tutoring workflow. Queries use $N placeholders and RETURNING so the
// same statements run on SQLite and PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure from any of the supported drivers.
func isUniqueViolation(err error) bool {
	var mErr sqlite3.Error
	if errors.As(err, &mErr) {
		return mErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			mErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var cErr *sqlite.Error
	if errors.As(err, &cErr) {
		switch cErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3lib.SQLITE_CONSTRAINT:
			return strings.Contains(cErr.Error(), "UNIQUE constraint failed")
		}
		return false
	}
	var pErr *pq.Error
	if errors.As(err, &pErr) {
		return pErr.Code.Name() == "unique_violation"
	}
	return false
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint failure.
func isForeignKeyViolation(err error) bool {
	var mErr sqlite3.Error
	if errors.As(err, &mErr) {
		return mErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var cErr *sqlite.Error
	if errors.As(err, &cErr) {
		switch cErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3lib.SQLITE_CONSTRAINT:
			return strings.Contains(cErr.Error(), "FOREIGN KEY constraint failed")
		}
		return false
	}
	var pErr *pq.Error
	if errors.As(err, &pErr) {
		return pErr.Code.Name() == "foreign_key_violation"
	}
	return false
}
