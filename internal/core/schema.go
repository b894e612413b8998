// Package core contains the data model shared by every fixie package: the fixture
// records read from disk, the key metadata read from the database, and the
// per-record results of loading fixtures into a table.
package core

import (
	"fmt"
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectMariaDB    Dialect = "mariadb"
	DialectTiDB       Dialect = "tidb"
	DialectPostgreSQL Dialect = "postgresql"
	DialectSQLite     Dialect = "sqlite"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectMySQL,
		DialectMariaDB,
		DialectTiDB,
		DialectPostgreSQL,
		DialectSQLite,
	}
}

// IsValidDialect reports whether d is a recognized dialect string.
func IsValidDialect(d string) bool {
	for _, supported := range SupportedDialects() {
		if strings.EqualFold(string(supported), d) {
			return true
		}
	}
	return false
}

// ParseDialect normalizes d and returns the matching Dialect.
func ParseDialect(d string) (Dialect, error) {
	d = strings.ToLower(strings.TrimSpace(d))
	switch d {
	case "postgres", "pg":
		return DialectPostgreSQL, nil
	case "sqlite3":
		return DialectSQLite, nil
	}
	if !IsValidDialect(d) {
		return "", fmt.Errorf("unsupported dialect %q; supported: %v", d, SupportedDialects())
	}
	return Dialect(d), nil
}

// IsMySQLFamily reports whether the dialect speaks the MySQL protocol.
func (d Dialect) IsMySQLFamily() bool {
	return d == DialectMySQL || d == DialectMariaDB || d == DialectTiDB
}

// KeyDetection selects how foreign key columns are discovered.
type KeyDetection string

const (
	// KeyDetectionAuto reads declared foreign-key constraints and falls back to
	// the index heuristic when a table declares none or constraint metadata
	// cannot be read.
	KeyDetectionAuto KeyDetection = "auto"
	// KeyDetectionConstraints reads declared foreign-key constraints only.
	KeyDetectionConstraints KeyDetection = "constraints"
	// KeyDetectionIndex treats every column of a non-unique index as a foreign key.
	KeyDetectionIndex KeyDetection = "index"
)

// ParseKeyDetection returns the KeyDetection for s. Empty means auto.
func ParseKeyDetection(s string) (KeyDetection, error) {
	switch KeyDetection(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyDetectionAuto:
		return KeyDetectionAuto, nil
	case KeyDetectionConstraints:
		return KeyDetectionConstraints, nil
	case KeyDetectionIndex:
		return KeyDetectionIndex, nil
	default:
		return "", fmt.Errorf("unsupported key detection %q; use 'auto', 'constraints', or 'index'", s)
	}
}

// KeySource records which metadata produced a TableKeys foreign key list.
type KeySource string

const (
	KeySourceConstraints KeySource = "constraints"
	KeySourceIndex       KeySource = "index"
)

// Server describes the database a connection points at.
type Server struct {
	Schema  string  `json:"schema"`
	Dialect Dialect `json:"dialect"`
	Version string  `json:"version,omitempty"`
}

// Column is a key column and its declared SQL type, e.g. "int" or "char(36)".
type Column struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ForeignKey is a column whose values are symbolic references to records of
// another table. RefTable is empty when the key was found by the index heuristic.
type ForeignKey struct {
	Column
	RefTable string `json:"refTable,omitempty"`
}

// TableKeys holds the key metadata of one table, fetched fresh for every load.
type TableKeys struct {
	Schema      string       `json:"schema"`
	Table       string       `json:"table"`
	PrimaryKey  *Column      `json:"primaryKey,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
	Source      KeySource    `json:"source"`
}

// ForeignKey returns the foreign key on column name, if any.
func (k *TableKeys) ForeignKey(name string) (ForeignKey, bool) {
	if k == nil {
		return ForeignKey{}, false
	}
	for _, fk := range k.ForeignKeys {
		if fk.Name == name {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// References returns the distinct tables referenced by declared foreign keys,
// in column order. Self references are skipped.
func (k *TableKeys) References() []string {
	if k == nil {
		return nil
	}
	seen := make(map[string]bool, len(k.ForeignKeys))
	var refs []string
	for _, fk := range k.ForeignKeys {
		if fk.RefTable == "" || strings.EqualFold(fk.RefTable, k.Table) || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		refs = append(refs, fk.RefTable)
	}
	return refs
}
