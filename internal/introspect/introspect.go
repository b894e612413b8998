// Package introspect contains the introspecter interface used to read key
// metadata from a live database: the active schema, the primary key column of a
// table, and the columns that reference other tables. Metadata is never cached;
// every call goes to the database.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fixie/internal/core"
	"fixie/internal/database"
)

// ErrUnsupportedDialect is returned when no introspecter is registered for a dialect.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

type Introspecter interface {
	// Describe returns the active schema and the server flavor and version.
	Describe(ctx context.Context, q database.Conn) (*core.Server, error)
	// SchemaName returns the schema the connection is working in.
	SchemaName(ctx context.Context, q database.Conn) (string, error)
	// PrimaryKey returns the first primary key column of table, or nil.
	PrimaryKey(ctx context.Context, q database.Conn, schema, table string) (*core.Column, error)
	// ConstraintForeignKeys returns the columns of declared foreign-key constraints.
	ConstraintForeignKeys(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error)
	// IndexedColumns returns the columns of non-unique indexes, the legacy
	// stand-in for foreign keys on engines without constraint metadata.
	IndexedColumns(ctx context.Context, q database.Conn, schema, table string) ([]core.ForeignKey, error)
}

var (
	registry = make(map[core.Dialect]func() Introspecter)
	mu       sync.RWMutex
)

func Register(dialect core.Dialect, fn func() Introspecter) {
	mu.Lock()
	defer mu.Unlock()
	registry[dialect] = fn
}

func NewIntrospecter(dialect core.Dialect) (Introspecter, error) {
	mu.RLock()
	fn, ok := registry[dialect]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %v", ErrUnsupportedDialect, dialect)
	}

	return fn(), nil
}

// TableKeys reads the primary key and the foreign key columns of schema.table.
// mode selects where foreign keys come from. In auto mode the index heuristic
// is used when the constraint lookup fails or finds no constraints.
func TableKeys(ctx context.Context, i Introspecter, q database.Conn, schema, table string, mode core.KeyDetection) (*core.TableKeys, error) {
	pk, err := i.PrimaryKey(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("primary key lookup for %s.%s: %w", schema, table, err)
	}

	keys := &core.TableKeys{
		Schema:     schema,
		Table:      table,
		PrimaryKey: pk,
	}

	var fks []core.ForeignKey
	switch mode {
	case core.KeyDetectionIndex:
		fks, err = i.IndexedColumns(ctx, q, schema, table)
		keys.Source = core.KeySourceIndex
	case core.KeyDetectionConstraints:
		fks, err = i.ConstraintForeignKeys(ctx, q, schema, table)
		keys.Source = core.KeySourceConstraints
	default:
		keys.Source = core.KeySourceConstraints
		fks, err = i.ConstraintForeignKeys(ctx, q, schema, table)
		if err != nil || len(fks) == 0 {
			constraintErr := err
			indexed, indexErr := i.IndexedColumns(ctx, q, schema, table)
			switch {
			case indexErr != nil:
				err = errors.Join(constraintErr, indexErr)
			case len(indexed) > 0 || constraintErr != nil:
				keys.Source = core.KeySourceIndex
				fks, err = indexed, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("foreign key lookup for %s.%s: %w", schema, table, err)
	}

	keys.ForeignKeys = uniqueForeignKeys(fks, pk, keys.Source == core.KeySourceIndex)
	return keys, nil
}

// uniqueForeignKeys drops repeated columns, keeping the first occurrence. With
// the index heuristic the primary key column is never a foreign key.
func uniqueForeignKeys(fks []core.ForeignKey, pk *core.Column, skipPK bool) []core.ForeignKey {
	seen := make(map[string]bool, len(fks))
	out := make([]core.ForeignKey, 0, len(fks))
	for _, fk := range fks {
		if seen[fk.Name] {
			continue
		}
		if skipPK && pk != nil && fk.Name == pk.Name {
			continue
		}
		seen[fk.Name] = true
		out = append(out, fk)
	}
	return out
}
