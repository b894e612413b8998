// Package dialect provides a unified interface for building the statements fixie
// runs against each supported database: fixture INSERTs, teardown statements and
// the classification of driver errors.
package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fixie/internal/core"
)

// ErrUnsupportedDialect is returned when no dialect is registered for a name.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

// Dialect builds SQL for a specific database.
type Dialect interface {
	Name() core.Dialect
	QuoteIdentifier(name string) string
	QuoteString(value string) string
	// Insert returns a parameterized INSERT and its arguments, in column order.
	Insert(table string, columns []string, values []any) (string, []any, error)
	// InsertLiteral returns the same INSERT with the values inlined as literals.
	InsertLiteral(table string, columns []string, values []any) (string, error)
	// Truncate returns the statements that empty tables, in execution order.
	// They must run on a single connection. When more than one statement is
	// returned, the last one restores the session settings the first one changed.
	Truncate(tables []string) []string
	IsDuplicateKey(err error) bool
}

// Checker is implemented by dialects able to parse their own statements.
type Checker interface {
	CheckStatement(stmt string) error
}

var (
	registry = make(map[core.Dialect]func() Dialect)
	mu       sync.RWMutex
)

// RegisterDialect creates a new registry entry for the specified dialect.
func RegisterDialect(d core.Dialect, ctor func() Dialect) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = ctor
}

// GetDialect returns the dialect for the specified type from the registry.
func GetDialect(d core.Dialect) (Dialect, error) {
	mu.RLock()
	ctor, ok := registry[d]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDialect, d)
	}
	return ctor(), nil
}

// InsertBuilder builds INSERT statements with squirrel for one dialect.
type InsertBuilder struct {
	Quote       func(string) string
	Literal     func(any) string
	Placeholder sq.PlaceholderFormat
}

// Build returns a parameterized INSERT for table.
func (b InsertBuilder) Build(table string, columns []string, values []any) (string, []any, error) {
	ins, err := b.builder(table, columns, values)
	if err != nil {
		return "", nil, err
	}
	return ins.Values(values...).PlaceholderFormat(b.Placeholder).ToSql()
}

// BuildLiteral returns the INSERT with values rendered inline.
func (b InsertBuilder) BuildLiteral(table string, columns []string, values []any) (string, error) {
	ins, err := b.builder(table, columns, values)
	if err != nil {
		return "", err
	}
	exprs := make([]any, len(values))
	for i, v := range values {
		exprs[i] = sq.Expr(b.Literal(v))
	}
	stmt, _, err := ins.Values(exprs...).PlaceholderFormat(sq.Question).ToSql()
	return stmt, err
}

func (b InsertBuilder) builder(table string, columns []string, values []any) (sq.InsertBuilder, error) {
	if len(columns) == 0 {
		return sq.InsertBuilder{}, fmt.Errorf("insert into %s: no columns", table)
	}
	if len(columns) != len(values) {
		return sq.InsertBuilder{}, fmt.Errorf("insert into %s: %d columns but %d values", table, len(columns), len(values))
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.Quote(c)
	}
	return sq.Insert(b.Quote(table)).Columns(quoted...), nil
}

// Literal renders v as a SQL literal. quote renders strings and hex renders
// byte slices.
func Literal(v any, quote func(string) string, hex func([]byte) string) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(x)
	case []byte:
		return hex(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return quote(x.Format("2006-01-02 15:04:05.999999"))
	case fmt.Stringer:
		return quote(x.String())
	default:
		return quote(fmt.Sprint(x))
	}
}
