// Package sqlite provides SQLite dialect support.
package sqlite

import (
	"encoding/hex"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fixie/internal/core"
	"fixie/internal/dialect"
)

func init() {
	dialect.RegisterDialect(core.DialectSQLite, func() dialect.Dialect {
		return NewSQLiteDialect()
	})
}

// Dialect is the SQLite dialect.
type Dialect struct {
	builder dialect.InsertBuilder
}

// NewSQLiteDialect initializes a new SQLite dialect instance.
func NewSQLiteDialect() *Dialect {
	d := &Dialect{}
	d.builder = dialect.InsertBuilder{
		Quote:       d.QuoteIdentifier,
		Literal:     d.literal,
		Placeholder: sq.Question,
	}
	return d
}

func (d *Dialect) Name() core.Dialect {
	return core.DialectSQLite
}

func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Dialect) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d *Dialect) literal(v any) string {
	return dialect.Literal(v, d.QuoteString, func(b []byte) string {
		return "X'" + hex.EncodeToString(b) + "'"
	})
}

func (d *Dialect) Insert(table string, columns []string, values []any) (string, []any, error) {
	return d.builder.Build(table, columns, values)
}

func (d *Dialect) InsertLiteral(table string, columns []string, values []any) (string, error) {
	return d.builder.BuildLiteral(table, columns, values)
}

// Truncate deletes every row with foreign key enforcement switched off.
// SQLite has no TRUNCATE; DELETE without WHERE uses the truncate optimization.
func (d *Dialect) Truncate(tables []string) []string {
	if len(tables) == 0 {
		return nil
	}
	stmts := make([]string, 0, len(tables)+2)
	stmts = append(stmts, "PRAGMA foreign_keys = OFF")
	for _, t := range tables {
		stmts = append(stmts, "DELETE FROM "+d.QuoteIdentifier(t))
	}
	return append(stmts, "PRAGMA foreign_keys = ON")
}

func (d *Dialect) IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
