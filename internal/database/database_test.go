package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixie/internal/core"
)

var (
	_ Conn   = (*sql.DB)(nil)
	_ Conn   = (*sql.Conn)(nil)
	_ Conn   = (*sql.Tx)(nil)
	_ Pinner = (*sql.DB)(nil)
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		dialect  core.Dialect
		expected string
		wantErr  bool
	}{
		{core.DialectMySQL, "mysql", false},
		{core.DialectMariaDB, "mysql", false},
		{core.DialectTiDB, "mysql", false},
		{core.DialectPostgreSQL, "pgx", false},
		{core.DialectSQLite, "sqlite", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			name, err := DriverName(tt.dialect)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, core.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	_, err = db.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 1, count, "single pooled connection keeps the in-memory database")
}

func TestOpenUnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	assert.Error(t, err)
}

func TestOpenUnreachableMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	_, err := Open(context.Background(), core.DialectMySQL, "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}
