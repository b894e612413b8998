// Package yaml parses YAML fixture files. The document is a mapping from record
// name to field mapping:
//
//	Roberto:
//	  first_name: Roberto
//	  last_name: Tizio
//
// Records and fields keep the order of the file.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"fixie/internal/core"
)

// Parser reads YAML fixture files.
type Parser struct{}

// NewParser creates a new YAML fixture parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a YAML fixture file.
func (p *Parser) ParseFile(path string) (*core.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("yaml: open file %q: %w", path, err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads YAML content from r.
func (p *Parser) Parse(r io.Reader) (*core.RecordSet, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return core.NewRecordSet(), nil
		}
		return nil, fmt.Errorf("yaml: decode error: %w", err)
	}

	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return core.NewRecordSet(), nil
		}
		root = resolve(root.Content[0])
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return core.NewRecordSet(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml: line %d: expected a mapping of records", root.Line)
	}

	set := core.NewRecordSet()
	err := eachPair(root, func(key string, value *yaml.Node) error {
		if _, dup := set.Get(key); dup {
			return fmt.Errorf("yaml: line %d: duplicate record %q", value.Line, key)
		}
		rec, err := record(key, value)
		if err != nil {
			return err
		}
		set.Add(key, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func record(name string, node *yaml.Node) (*core.Record, error) {
	rec := core.NewRecord()
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return rec, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml: line %d: record %q: expected a mapping", node.Line, name)
	}

	err := eachPair(node, func(field string, value *yaml.Node) error {
		if rec.Has(field) {
			return fmt.Errorf("yaml: line %d: record %q: duplicate field %q", value.Line, name, field)
		}
		v, err := scalar(value)
		if err != nil {
			return fmt.Errorf("yaml: line %d: record %q field %q: %w", value.Line, name, field, err)
		}
		rec.Set(field, v)
		return nil
	})
	return rec, err
}

func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolve(node.Content[i])
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("yaml: line %d: keys must be scalars", key.Line)
		}
		if err := fn(key.Value, resolve(node.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func scalar(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("only scalar values are supported")
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	if i, ok := v.(int); ok {
		return int64(i), nil
	}
	return v, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
