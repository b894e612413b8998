// Package postgres provides PostgreSQL dialect support.
package postgres

import (
	"encoding/hex"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"fixie/internal/core"
	"fixie/internal/dialect"
)

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

func init() {
	dialect.RegisterDialect(core.DialectPostgreSQL, func() dialect.Dialect {
		return NewPostgresDialect()
	})
}

// Dialect is the PostgreSQL dialect.
type Dialect struct {
	builder dialect.InsertBuilder
}

// NewPostgresDialect initializes a new PostgreSQL dialect instance.
func NewPostgresDialect() *Dialect {
	d := &Dialect{}
	d.builder = dialect.InsertBuilder{
		Quote:       d.QuoteIdentifier,
		Literal:     d.literal,
		Placeholder: sq.Dollar,
	}
	return d
}

func (d *Dialect) Name() core.Dialect {
	return core.DialectPostgreSQL
}

func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString assumes standard_conforming_strings, the default since 9.1.
func (d *Dialect) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d *Dialect) literal(v any) string {
	return dialect.Literal(v, d.QuoteString, func(b []byte) string {
		return `'\x` + hex.EncodeToString(b) + `'::bytea`
	})
}

// Insert returns a parameterized INSERT with $n placeholders.
func (d *Dialect) Insert(table string, columns []string, values []any) (string, []any, error) {
	return d.builder.Build(table, columns, values)
}

func (d *Dialect) InsertLiteral(table string, columns []string, values []any) (string, error) {
	return d.builder.BuildLiteral(table, columns, values)
}

// Truncate empties all tables in one statement, resetting sequences and
// cascading to referencing tables.
func (d *Dialect) Truncate(tables []string) []string {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = d.QuoteIdentifier(t)
	}
	return []string{"TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"}
}

func (d *Dialect) IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
