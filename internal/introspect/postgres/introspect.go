// Package postgres reads key metadata from PostgreSQL catalogs.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"fixie/internal/core"
	"fixie/internal/database"
	"fixie/internal/introspect"
)

var ErrNoSchema = errors.New("no current schema")

func init() {
	introspect.Register(core.DialectPostgreSQL, New)
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

	var version string
	if err := q.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return nil, err
	}
	if idx := strings.IndexByte(version, ' '); idx > 0 {
		version = version[:idx]
	}

	return &core.Server{Schema: schema, Dialect: core.DialectPostgreSQL, Version: version}, nil
}

func (i *introspecter) SchemaName(ctx context.Context, q database.Conn) (string, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, "SELECT current_schema()").Scan(&name); err != nil {
		return "", err
	}
	if !name.Valid || name.String == "" {
		return "", ErrNoSchema
	}
	return name.String, nil
}

// Column types are reported by format_type, so lengths survive
// (character(36), not character) in every lookup.
func (i *introspecter) PrimaryKey(ctx context.Context, q database.Conn, schema, table string) (*core.Column, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT k.column_name, format_type(a.atttypid, a.atttypmod)
		FROM information_schema.table_constraints t
		JOIN information_schema.key_column_usage k
			ON k.constraint_schema = t.constraint_schema
			AND k.constraint_name = t.constraint_name
			AND k.table_name = t.table_name
		JOIN pg_attribute a
			ON a.attrelid = format('%I.%I', k.table_schema, k.table_name)::regclass
			AND a.attname = k.column_name
		WHERE t.table_schema = $1 AND t.table_name = $2 AND t.constraint_type = 'PRIMARY KEY'
		ORDER BY k.ordinal_position
	`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk *core.Column
	for rows.Next() {
		var col core.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		if pk == nil {
			pk = &col
		}
	}
	return pk, rows.Err()
}

func (i *introspecter) ConstraintForeignKeys(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT k.column_name, format_type(a.atttypid, a.atttypmod), u.table_name
		FROM information_schema.table_constraints t
		JOIN information_schema.key_column_usage k
			ON k.constraint_schema = t.constraint_schema
			AND k.constraint_name = t.constraint_name
			AND k.table_name = t.table_name
		JOIN information_schema.constraint_column_usage u
			ON u.constraint_schema = t.constraint_schema
			AND u.constraint_name = t.constraint_name
		JOIN pg_attribute a
			ON a.attrelid = format('%I.%I', k.table_schema, k.table_name)::regclass
			AND a.attname = k.column_name
		WHERE t.table_schema = $1 AND t.table_name = $2 AND t.constraint_type = 'FOREIGN KEY'
		ORDER BY a.attnum
	`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.ForeignKey
	for rows.Next() {
		var fk core.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Type, &fk.RefTable); err != nil {
			return nil, err
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

// IndexedColumns returns the leading column of every non-unique index.
func (i *introspecter) IndexedColumns(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.attname, format_type(a.atttypid, a.atttypmod)
		FROM pg_index x
		JOIN pg_class t ON t.oid = x.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.indkey[0]
		WHERE n.nspname = $1 AND t.relname = $2
			AND NOT x.indisunique AND NOT x.indisprimary
		ORDER BY a.attnum
	`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.ForeignKey
	for rows.Next() {
		var fk core.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Type); err != nil {
			return nil, err
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}
