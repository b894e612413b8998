// Package database opens connections for every supported dialect and defines
// the narrow connection interface the rest of fixie works against.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fixie/internal/core"
)

// Conn is the subset of *sql.DB used by fixie. *sql.Conn and *sql.Tx satisfy it
// too, so a caller can pin a single connection or wrap a load in a transaction.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pinner is implemented by *sql.DB. Statements that change session state
// (e.g. FOREIGN_KEY_CHECKS) must run on one pinned connection.
type Pinner interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// DriverName returns the database/sql driver registered for d.
func DriverName(d core.Dialect) (string, error) {
	switch {
	case d.IsMySQLFamily():
		return "mysql", nil
	case d == core.DialectPostgreSQL:
		return "pgx", nil
	case d == core.DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %v", d)
	}
}

// Open opens a connection pool for d and pings it.
// SQLite pools are limited to one connection so in-memory databases survive.
func Open(ctx context.Context, d core.Dialect, dsn string) (*sql.DB, error) {
	driverName, err := DriverName(d)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if d == core.DialectSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}
