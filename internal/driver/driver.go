// Package driver loads named fixture records into a relational database.
// Primary keys and foreign keys are synthesized from symbolic record names, so
// fixtures reference each other by name instead of by hard-coded ids. The
// driver remembers every table it touched and can empty them all again.
package driver

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fixie/internal/core"
	"fixie/internal/database"
	"fixie/internal/dialect"
	"fixie/internal/introspect"
	"fixie/internal/keygen"

	_ "fixie/internal/dialect/mysql"
	_ "fixie/internal/dialect/postgres"
	_ "fixie/internal/dialect/sqlite"
	_ "fixie/internal/introspect/mysql"
	_ "fixie/internal/introspect/postgres"
	_ "fixie/internal/introspect/sqlite"
)

// Options contains the settings a Driver is created with.
type Options struct {
	// KeyDetection selects where foreign key columns come from. Empty means auto.
	KeyDetection core.KeyDetection
	// DryRun builds and checks every statement without executing it.
	DryRun bool
	// Out receives one diagnostic line per failed record. Nil discards them.
	Out io.Writer
}

// Driver inserts fixture records through a database connection. It is not safe
// for concurrent use.
type Driver struct {
	conn         database.Conn
	dialect      dialect.Dialect
	introspecter introspect.Introspecter
	options      Options
	out          io.Writer

	tables []string
	loaded map[string]bool
}

// New returns a Driver for conn. conn may be a *sql.DB, a pinned *sql.Conn, or
// a *sql.Tx when the whole load should be all-or-nothing.
func New(conn database.Conn, d core.Dialect, options Options) (*Driver, error) {
	if conn == nil {
		return nil, fmt.Errorf("driver: nil connection")
	}

	dia, err := dialect.GetDialect(d)
	if err != nil {
		return nil, err
	}
	insp, err := introspect.NewIntrospecter(d)
	if err != nil {
		return nil, err
	}

	if options.KeyDetection == "" {
		options.KeyDetection = core.KeyDetectionAuto
	}
	if _, err := core.ParseKeyDetection(string(options.KeyDetection)); err != nil {
		return nil, err
	}

	out := options.Out
	if out == nil {
		out = io.Discard
	}

	return &Driver{
		conn:         conn,
		dialect:      dia,
		introspecter: insp,
		options:      options,
		out:          out,
		loaded:       make(map[string]bool),
	}, nil
}

func (d *Driver) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}

// Dialect returns the statement builder the driver uses.
func (d *Driver) Dialect() dialect.Dialect {
	return d.dialect
}

// DryRun reports whether statements are only planned.
func (d *Driver) DryRun() bool {
	return d.options.DryRun
}

// BuildRecords inserts records into tableName and returns one outcome per
// record, in input order. A record whose insert fails is reported in its
// outcome and does not stop the load. The returned error is non-nil only when
// the table itself cannot be loaded: an empty name, a metadata lookup failure,
// a table without primary key, or a cancelled context.
func (d *Driver) BuildRecords(ctx context.Context, tableName string, records *core.RecordSet) (*core.Result, error) {
	if strings.TrimSpace(tableName) == "" {
		return nil, core.ErrEmptyTable
	}
	d.markLoaded(tableName)

	keys, err := d.TableKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if keys.PrimaryKey == nil {
		return nil, fmt.Errorf("%w: %s.%s", core.ErrNoPrimaryKey, keys.Schema, tableName)
	}

	result := core.NewResult(tableName, keys)
	for _, name := range records.Names() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rec, _ := records.Get(name)
		result.Add(d.buildRecord(ctx, keys, name, rec))
	}

	return result, nil
}

func (d *Driver) buildRecord(ctx context.Context, keys *core.TableKeys, name string, rec *core.Record) *core.Outcome {
	resolved := ResolveKeys(keys, name, rec)
	outcome := &core.Outcome{
		Name:   name,
		Record: core.NewHandle(name, resolved),
	}

	columns, values := resolved.Fields(), resolved.Values()
	stmt, args, err := d.dialect.Insert(keys.Table, columns, values)
	if err != nil {
		return d.fail(outcome, keys.Table, err)
	}
	outcome.SQL, outcome.Args = stmt, args

	literal, err := d.dialect.InsertLiteral(keys.Table, columns, values)
	if err != nil {
		return d.fail(outcome, keys.Table, err)
	}
	outcome.Literal = literal

	if d.options.DryRun {
		if checker, ok := d.dialect.(dialect.Checker); ok {
			if err := checker.CheckStatement(literal); err != nil {
				return d.fail(outcome, keys.Table, err)
			}
		}
		outcome.Status = core.StatusPlanned
		return outcome
	}

	if _, err := d.conn.ExecContext(ctx, stmt, args...); err != nil {
		return d.fail(outcome, keys.Table, err)
	}
	outcome.Status = core.StatusInserted
	return outcome
}

func (d *Driver) fail(o *core.Outcome, table string, err error) *core.Outcome {
	o.Status = core.StatusFailed
	o.Duplicate = d.dialect.IsDuplicateKey(err)
	o.Err = &core.RecordError{
		Table: table,
		Name:  o.Name,
		SQL:   o.SQL,
		Args:  o.Args,
		Err:   err,
	}
	d.printf("Failed to insert %s record %q: %v\n", table, o.Name, err)
	return o
}

// ResolveKeys returns a copy of rec with every foreign key value replaced by the
// key generated from it and the primary key added when rec does not set it.
// NULL foreign keys stay NULL.
func ResolveKeys(keys *core.TableKeys, name string, rec *core.Record) *core.Record {
	resolved := rec.Clone()
	for _, fk := range keys.ForeignKeys {
		v, ok := resolved.Get(fk.Name)
		if !ok || v == nil {
			continue
		}
		resolved.Set(fk.Name, keygen.ForColumn(fk.Column, symbol(v)))
	}
	if pk := keys.PrimaryKey; pk != nil && !resolved.Has(pk.Name) {
		resolved.Set(pk.Name, keygen.ForColumn(*pk, name))
	}
	return resolved
}

func symbol(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func (d *Driver) markLoaded(table string) {
	if d.loaded[table] {
		return
	}
	d.loaded[table] = true
	d.tables = append(d.tables, table)
}

// Tables returns every table passed to BuildRecords since the last Truncate,
// in first-load order.
func (d *Driver) Tables() []string {
	out := make([]string, len(d.tables))
	copy(out, d.tables)
	return out
}

// TableKeys reads the primary and foreign keys of table in the active schema.
func (d *Driver) TableKeys(ctx context.Context, table string) (*core.TableKeys, error) {
	schema, err := d.introspecter.SchemaName(ctx, d.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	return introspect.TableKeys(ctx, d.introspecter, d.conn, schema, table, d.options.KeyDetection)
}

// References returns the tables that table points at through declared foreign
// key constraints, whatever the key detection mode. Self references are left
// out.
func (d *Driver) References(ctx context.Context, table string) ([]string, error) {
	schema, err := d.introspecter.SchemaName(ctx, d.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	fks, err := d.introspecter.ConstraintForeignKeys(ctx, d.conn, schema, table)
	if err != nil {
		return nil, fmt.Errorf("foreign key lookup for %s.%s: %w", schema, table, err)
	}
	keys := &core.TableKeys{Schema: schema, Table: table, ForeignKeys: fks}
	return keys.References(), nil
}

// Describe returns the active schema and the server flavor.
func (d *Driver) Describe(ctx context.Context) (*core.Server, error) {
	return d.introspecter.Describe(ctx, d.conn)
}

// Truncate empties every loaded table and forgets them.
func (d *Driver) Truncate(ctx context.Context) error {
	if err := d.TruncateTables(ctx, d.tables...); err != nil {
		return err
	}
	d.tables = nil
	d.loaded = make(map[string]bool)
	return nil
}

// TruncateTables empties tables without touching the loaded set. The
// statements run on one connection since some of them change session state.
func (d *Driver) TruncateTables(ctx context.Context, tables ...string) error {
	stmts := d.dialect.Truncate(tables)
	if len(stmts) == 0 {
		return nil
	}

	conn, release, err := d.pin(ctx)
	if err != nil {
		return err
	}
	defer release()

	for i, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if last := len(stmts) - 1; i > 0 && i < last {
				_, _ = conn.ExecContext(ctx, stmts[last])
			}
			return fmt.Errorf("truncate statement %d failed: %w\n  Statement: %s", i+1, err, stmt)
		}
	}
	return nil
}

// pin returns a single connection: a dedicated one from a pool, or the
// driver's own connection when it already is one.
func (d *Driver) pin(ctx context.Context) (database.Conn, func(), error) {
	pinner, ok := d.conn.(database.Pinner)
	if !ok {
		return d.conn, func() {}, nil
	}
	conn, err := pinner.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, func() { _ = conn.Close() }, nil
}
