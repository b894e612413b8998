// Package fixture runs fixtures for a test session: it loads the fixture files
// of a directory through a Driver in dependency order, keeps the results so
// tests can look records up by table and name, and tears everything down.
//
// A Session replaces any process-wide registry. Create one per test run.
package fixture

import (
	"context"
	"fmt"
	"io"

	"fixie/internal/core"
	"fixie/internal/driver"
	"fixie/internal/loader"
)

// Options contains the settings a Session is created with.
type Options struct {
	// Location is the fixtures directory.
	Location string
	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

type Session struct {
	driver  *driver.Driver
	options Options
	out     io.Writer

	results []*core.Result
	byTable map[string]*core.Result
}

func NewSession(drv *driver.Driver, options Options) *Session {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	return &Session{
		driver:  drv,
		options: options,
		out:     out,
		byTable: make(map[string]*core.Result),
	}
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Driver returns the driver the session loads through.
func (s *Session) Driver() *driver.Driver {
	return s.driver
}

// Fixtures reads the fixture files of the session location. With tables, only
// those are returned; a table without a fixture file is an error.
func (s *Session) Fixtures(tables ...string) ([]*loader.Fixture, error) {
	all, err := loader.LoadDir(s.options.Location)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return all, nil
	}

	byTable := make(map[string]*loader.Fixture, len(all))
	for _, f := range all {
		byTable[f.Table] = f
	}
	selected := make([]*loader.Fixture, 0, len(tables))
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		f, ok := byTable[t]
		if !ok {
			return nil, fmt.Errorf("no fixture file for table %q in %s", t, s.options.Location)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		selected = append(selected, f)
	}
	return selected, nil
}

// Up loads the fixture files of the session location, or only those of tables.
func (s *Session) Up(ctx context.Context, tables ...string) ([]*core.Result, error) {
	fixtures, err := s.Fixtures(tables...)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, fixtures...)
}

// Load inserts fixtures, referenced tables first. It stops at the first table
// that cannot be loaded; record failures are kept in the results.
func (s *Session) Load(ctx context.Context, fixtures ...*loader.Fixture) ([]*core.Result, error) {
	ordered, err := s.Order(ctx, fixtures)
	if err != nil {
		return nil, err
	}

	results := make([]*core.Result, 0, len(ordered))
	for _, f := range ordered {
		s.printf("Loading %s (%d records)\n", f.Table, f.Records.Len())
		res, err := s.driver.BuildRecords(ctx, f.Table, f.Records)
		if err != nil {
			return results, fmt.Errorf("load %s: %w", f.Table, err)
		}
		if failed := len(res.Failed()); failed > 0 {
			s.printf("  %d of %d records failed\n", failed, len(res.Outcomes))
		}
		s.keep(res)
		results = append(results, res)
	}
	return results, nil
}

// Order sorts fixtures so that tables referenced through foreign key
// constraints load before the tables referencing them. Constraints are read in
// every key detection mode. Self references are ignored; a cycle between
// tables is an error.
func (s *Session) Order(ctx context.Context, fixtures []*loader.Fixture) ([]*loader.Fixture, error) {
	graph := NewDependencyGraph()
	byTable := make(map[string]*loader.Fixture, len(fixtures))
	for _, f := range fixtures {
		refs, err := s.driver.References(ctx, f.Table)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", f.Table, err)
		}
		graph.AddTable(f.Table, refs...)
		byTable[f.Table] = f
	}

	order, err := graph.BuildInsertionOrder()
	if err != nil {
		return nil, err
	}

	out := make([]*loader.Fixture, 0, len(order))
	for _, table := range order {
		out = append(out, byTable[table])
	}
	return out, nil
}

func (s *Session) keep(res *core.Result) {
	s.results = append(s.results, res)
	s.byTable[res.Table] = res
}

// Down empties every table loaded through the session driver and forgets the
// results.
func (s *Session) Down(ctx context.Context) error {
	if err := s.driver.Truncate(ctx); err != nil {
		return err
	}
	s.results = nil
	s.byTable = make(map[string]*core.Result)
	return nil
}

// Record returns the record name of table as it was last loaded.
func (s *Session) Record(table, name string) (*core.Handle, error) {
	res, ok := s.byTable[table]
	if !ok {
		return nil, fmt.Errorf("table %q has not been loaded", table)
	}
	h, ok := res.Handle(name)
	if !ok {
		return nil, fmt.Errorf("table %q has no record %q", table, name)
	}
	return h, nil
}

// Results returns every table result in load order.
func (s *Session) Results() []*core.Result {
	out := make([]*core.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Failures returns the failed outcomes of every loaded table.
func (s *Session) Failures() []*core.Outcome {
	var out []*core.Outcome
	for _, res := range s.results {
		out = append(out, res.Failed()...)
	}
	return out
}
