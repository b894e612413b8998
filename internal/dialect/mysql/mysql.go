// Package mysql provides MySQL dialect support (also used for MariaDB and TiDB):
// identifier quoting, fixture INSERT building, teardown statements and
// statement checking with the TiDB parser.
package mysql

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations

	"fixie/internal/core"
	"fixie/internal/dialect"
)

// MySQL server error numbers for duplicate keys.
const (
	erDupEntry            = 1062
	erDupEntryWithKeyName = 1586
)

func init() {
	for _, d := range []core.Dialect{core.DialectMySQL, core.DialectMariaDB, core.DialectTiDB} {
		dialect.RegisterDialect(d, func() dialect.Dialect {
			return NewMySQLDialect()
		})
	}
}

// Dialect represents the MySQL dialect struct.
type Dialect struct {
	builder dialect.InsertBuilder
}

// NewMySQLDialect initializes a new MySQL dialect instance.
func NewMySQLDialect() *Dialect {
	d := &Dialect{}
	d.builder = dialect.InsertBuilder{
		Quote:       d.QuoteIdentifier,
		Literal:     d.literal,
		Placeholder: sq.Question,
	}
	return d
}

// Name returns the name of the MySQL dialect.
func (d *Dialect) Name() core.Dialect {
	return core.DialectMySQL
}

// QuoteIdentifier is a function used for quote identification inside an SQL dialect.
func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString is a function used for quote string inside an SQL dialect.
func (d *Dialect) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\': // Backslash escaped
			b.WriteString(`\\`)
		case '\x00': // NUL byte
			b.WriteString(`\0`)
		case '\n': // Newline
			b.WriteString(`\n`)
		case '\r': // Carriage return
			b.WriteString(`\r`)
		case '\x1A': // Ctrl+Z
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (d *Dialect) literal(v any) string {
	return dialect.Literal(v, d.QuoteString, func(b []byte) string {
		return "X'" + hex.EncodeToString(b) + "'"
	})
}

// Insert returns a parameterized INSERT with ? placeholders.
func (d *Dialect) Insert(table string, columns []string, values []any) (string, []any, error) {
	return d.builder.Build(table, columns, values)
}

// InsertLiteral returns the INSERT with its values inlined.
func (d *Dialect) InsertLiteral(table string, columns []string, values []any) (string, error) {
	return d.builder.BuildLiteral(table, columns, values)
}

// Truncate disables foreign key checks for the session, truncates every table
// and enables the checks again.
func (d *Dialect) Truncate(tables []string) []string {
	if len(tables) == 0 {
		return nil
	}
	stmts := make([]string, 0, len(tables)+2)
	stmts = append(stmts, "SET FOREIGN_KEY_CHECKS = 0")
	for _, t := range tables {
		stmts = append(stmts, "TRUNCATE TABLE "+d.QuoteIdentifier(t))
	}
	return append(stmts, "SET FOREIGN_KEY_CHECKS = 1")
}

// IsDuplicateKey reports whether err is a MySQL duplicate entry error.
func (d *Dialect) IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == erDupEntry || myErr.Number == erDupEntryWithKeyName
}

// CheckStatement parses stmt with the TiDB parser and requires a single INSERT.
func (d *Dialect) CheckStatement(stmt string) error {
	node, err := parser.New().ParseOneStmt(stmt, "", "")
	if err != nil {
		return fmt.Errorf("invalid statement: %w", err)
	}
	if _, ok := node.(*ast.InsertStmt); !ok {
		return fmt.Errorf("expected an INSERT statement, got %T", node)
	}
	return nil
}
