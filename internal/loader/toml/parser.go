// Package toml parses TOML fixture files. Every top-level table is a record:
//
//	[Roberto]
//	first_name = "Roberto"
//	last_name  = "Tizio"
//
// Records and fields keep the order of the file.
package toml

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"fixie/internal/core"
)

// Parser reads TOML fixture files.
type Parser struct{}

// NewParser creates a new TOML fixture parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a TOML fixture file.
func (p *Parser) ParseFile(path string) (*core.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads TOML content from r.
func (p *Parser) Parse(r io.Reader) (*core.RecordSet, error) {
	var doc map[string]any
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}

	order := newKeyOrder(md.Keys())
	set := core.NewRecordSet()
	for _, name := range order.records(doc) {
		fields, ok := doc[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("toml: record %q: expected a table, got %T", name, doc[name])
		}

		rec := core.NewRecord()
		for _, field := range order.fields(name, fields) {
			v, err := scalar(fields[field])
			if err != nil {
				return nil, fmt.Errorf("toml: record %q field %q: %w", name, field, err)
			}
			rec.Set(field, v)
		}
		set.Add(name, rec)
	}
	return set, nil
}

func scalar(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []map[string]any:
		return nil, fmt.Errorf("nested tables are not supported")
	case []any:
		return nil, fmt.Errorf("arrays are not supported")
	default:
		return v, nil
	}
}

// keyOrder remembers the position of every key in the document.
type keyOrder struct {
	recordPos map[string]int
	fieldPos  map[string]map[string]int
}

func newKeyOrder(keys []toml.Key) *keyOrder {
	o := &keyOrder{
		recordPos: make(map[string]int),
		fieldPos:  make(map[string]map[string]int),
	}
	for i, k := range keys {
		if len(k) == 0 {
			continue
		}
		if _, ok := o.recordPos[k[0]]; !ok {
			o.recordPos[k[0]] = i
		}
		if len(k) < 2 {
			continue
		}
		fields := o.fieldPos[k[0]]
		if fields == nil {
			fields = make(map[string]int)
			o.fieldPos[k[0]] = fields
		}
		if _, ok := fields[k[1]]; !ok {
			fields[k[1]] = i
		}
	}
	return o
}

func (o *keyOrder) records(doc map[string]any) []string {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sortByPosition(names, o.recordPos)
	return names
}

func (o *keyOrder) fields(record string, fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sortByPosition(names, o.fieldPos[record])
	return names
}

// sortByPosition orders names by their position in the file; names without a
// known position go last, alphabetically.
func sortByPosition(names []string, pos map[string]int) {
	sort.SliceStable(names, func(i, j int) bool {
		pi, iok := pos[names[i]]
		pj, jok := pos[names[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
}
