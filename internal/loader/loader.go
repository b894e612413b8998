// Package loader reads fixture files. A fixtures directory holds one file per
// table, named after the table; each top-level key of a file is a record name
// and its value is the record's field map.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fixie/internal/core"
	"fixie/internal/loader/toml"
	"fixie/internal/loader/yaml"
)

type Parser interface {
	Parse(r io.Reader) (*core.RecordSet, error)
	ParseFile(path string) (*core.RecordSet, error)
}

// Fixture is the content of one fixture file.
type Fixture struct {
	Table   string
	Path    string
	Records *core.RecordSet
}

// NewParser returns the parser for the extension of path.
func NewParser(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser(), nil
	case ".yaml", ".yml":
		return yaml.NewParser(), nil
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// IsFixtureFile reports whether path has a fixture file extension.
func IsFixtureFile(path string) bool {
	_, err := NewParser(path)
	return err == nil
}

// TableName returns the table a fixture file loads into: its base name
// without extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile reads one fixture file.
func ParseFile(path string) (*Fixture, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	records, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &Fixture{Table: TableName(path), Path: path, Records: records}, nil
}

// LoadDir reads every fixture file in dir, sorted by file name. Other files
// and subdirectories are ignored. Two files for the same table are an error.
func LoadDir(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsFixtureFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	fixtures := make([]*Fixture, 0, len(paths))
	for _, path := range paths {
		table := TableName(path)
		if prev, ok := seen[table]; ok {
			return nil, fmt.Errorf("table %q has two fixture files: %s and %s", table, prev, path)
		}
		seen[table] = path

		f, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path
}
