// Package mysql contains introspect implementation for MySQL, MariaDB and TiDB dialects,
// since they expose the same information_schema views. Key metadata comes from
// information_schema.columns and information_schema.key_column_usage.
package mysql

import (
	"context"
	"database/sql"
	"errors"

	"fixie/internal/core"
	"fixie/internal/database"
	"fixie/internal/introspect"
)

// ErrNoDatabase is returned when the connection has no default database selected.
var ErrNoDatabase = errors.New("no database selected")

func init() {
	introspect.Register(core.DialectMySQL, New)
	introspect.Register(core.DialectMariaDB, New)
	introspect.Register(core.DialectTiDB, New)
}

type introspecter struct{}

func New() introspect.Introspecter {
	return &introspecter{}
}

func (i *introspecter) Describe(ctx context.Context, q database.Conn) (*core.Server, error) {
	schema, err := i.SchemaName(ctx, q)
	if err != nil {
		return nil, err
	}

	dialect, version, err := detectDialect(ctx, q)
	if err != nil {
		return nil, err
	}

	return &core.Server{Schema: schema, Dialect: dialect, Version: version}, nil
}

func (i *introspecter) SchemaName(ctx context.Context, q database.Conn) (string, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", err
	}
	if !name.Valid || name.String == "" {
		return "", ErrNoDatabase
	}
	return name.String, nil
}

func (i *introspecter) PrimaryKey(ctx context.Context, q database.Conn, schema, table string) (*core.Column, error) {
	cols, err := queryColumns(ctx, q, `
		SELECT c.column_name, c.column_type
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ? AND c.column_key = 'PRI'
		ORDER BY c.ordinal_position
	`, schema, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, nil
	}
	return &cols[0].Column, nil
}

func (i *introspecter) ConstraintForeignKeys(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error) {
	return queryColumns(ctx, q, `
		SELECT k.column_name, c.column_type, k.referenced_table_name
		FROM information_schema.key_column_usage k
		JOIN information_schema.columns c
			ON c.table_schema = k.table_schema
			AND c.table_name = k.table_name
			AND c.column_name = k.column_name
		WHERE k.table_schema = ? AND k.table_name = ? AND k.referenced_table_name IS NOT NULL
		ORDER BY c.ordinal_position
	`, schema, table)
}

// IndexedColumns returns the columns flagged 'MUL': the first column of a
// non-unique index.
func (i *introspecter) IndexedColumns(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error) {
	return queryColumns(ctx, q, `
		SELECT c.column_name, c.column_type
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ? AND c.column_key = 'MUL'
		ORDER BY c.ordinal_position
	`, schema, table)
}

// queryColumns scans rows of (name, type[, referenced table]).
func queryColumns(ctx context.Context, q database.Conn, query string, args ...any) ([]core.ForeignKey, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []core.ForeignKey
	for rows.Next() {
		var name, colType, refTable sql.NullString
		dest := []any{&name, &colType}
		if len(cols) > 2 {
			dest = append(dest, &refTable)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, core.ForeignKey{
			Column:   core.Column{Name: name.String, Type: colType.String},
			RefTable: refTable.String,
		})
	}

	return out, rows.Err()
}
