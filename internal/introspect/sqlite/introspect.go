// Package sqlite reads key metadata through the pragma table-valued functions.
// SQLite has a single schema per attached database; the schema argument is
// accepted and ignored, "main" is always used.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"fixie/internal/core"
	"fixie/internal/database"
	"fixie/internal/introspect"
)

const mainSchema = "main"

func init() {
	introspect.Register(core.DialectSQLite, New)
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
	if err := q.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return nil, err
	}

	return &core.Server{Schema: schema, Dialect: core.DialectSQLite, Version: version}, nil
}

func (i *introspecter) SchemaName(ctx context.Context, q database.Conn) (string, error) {
	var name string
	err := q.QueryRowContext(ctx, "SELECT name FROM pragma_database_list ORDER BY seq LIMIT 1").Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return mainSchema, nil
	case err != nil:
		return "", err
	case name == "":
		return mainSchema, nil
	}
	return name, nil
}

func (i *introspecter) PrimaryKey(ctx context.Context, q database.Conn, _, table string) (*core.Column, error) {
	fks, err := queryColumns(ctx, q, `
		SELECT name, type, ''
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk
	`, table)
	if err != nil {
		return nil, err
	}
	if len(fks) == 0 {
		return nil, nil
	}
	return &fks[0].Column, nil
}

func (i *introspecter) ConstraintForeignKeys(ctx context.Context, q database.Conn, _, table string) ([]core.ForeignKey, error) {
	return queryColumns(ctx, q, `
		SELECT f."from", COALESCE(t.type, ''), f."table"
		FROM pragma_foreign_key_list(?) f
		LEFT JOIN pragma_table_info(?) t ON t.name = f."from"
		ORDER BY t.cid, f.seq
	`, table, table)
}

// IndexedColumns returns the leading column of every non-unique index.
// Expression indexes have no column name and are skipped.
func (i *introspecter) IndexedColumns(ctx context.Context, q database.Conn, _, table string) ([]core.ForeignKey, error) {
	return queryColumns(ctx, q, `
		SELECT ii.name, COALESCE(t.type, ''), ''
		FROM pragma_index_list(?) il
		JOIN pragma_index_info(il.name) ii
		LEFT JOIN pragma_table_info(?) t ON t.name = ii.name
		WHERE il."unique" = 0 AND ii.seqno = 0 AND ii.name IS NOT NULL
		ORDER BY t.cid
	`, table, table)
}

func queryColumns(ctx context.Context, q database.Conn, query string, args ...any) ([]core.ForeignKey, error) {
	rows, err := q.QueryContext(ctx, query, args...)
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
