package fixture

import "fmt"

// DependencyGraph orders tables so that referenced tables come first.
type DependencyGraph struct {
	names []string
	deps  map[string][]string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps: make(map[string][]string),
	}
}

// AddTable adds table with the tables it references. Tables are visited in
// the order they were added, so the result is stable.
func (g *DependencyGraph) AddTable(table string, deps ...string) {
	if _, ok := g.deps[table]; !ok {
		g.names = append(g.names, table)
	}
	g.deps[table] = deps
}

// BuildInsertionOrder returns the tables of the graph, dependencies first.
// References to tables outside the graph are ignored.
func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	order := make([]string, 0, len(g.names))

	var visit func(string) error
	visit = func(table string) error {
		if temp[table] {
			return fmt.Errorf("circular dependency detected involving table: %s", table)
		}
		if visited[table] {
			return nil
		}

		temp[table] = true
		for _, dep := range g.deps[table] {
			if _, ok := g.deps[dep]; !ok || dep == table {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		temp[table] = false
		visited[table] = true
		order = append(order, table)
		return nil
	}

	for _, table := range g.names {
		if err := visit(table); err != nil {
			return nil, err
		}
	}
	return order, nil
}
