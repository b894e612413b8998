package output

import (
	"fmt"
	"strings"

	"fixie/internal/core"
)

type summaryFormatter struct{}

// FormatResults formats load results as a compact summary.
// Example output:
//
//	Fixture Load Summary
//	====================
//
//	users        inserted 2  planned 0  failed 0
//	posts        inserted 1  planned 0  failed 1
func (summaryFormatter) FormatResults(results []*core.Result) (string, error) {
	var sb strings.Builder
	sb.WriteString("Fixture Load Summary\n")
	sb.WriteString("====================\n\n")

	if len(results) == 0 {
		sb.WriteString("No tables loaded.\n")
		return sb.String(), nil
	}

	width := 0
	for _, r := range results {
		if r != nil && len(r.Table) > width {
			width = len(r.Table)
		}
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		c := countResults([]*core.Result{r})
		fmt.Fprintf(&sb, "%-*s  inserted %d  planned %d  failed %d\n", width, r.Table, c.Inserted, c.Planned, c.Failed)
	}

	c := countResults(results)
	fmt.Fprintf(&sb, "\nTotal: %d records in %d tables, %d failed\n", c.Records, c.Tables, c.Failed)
	return sb.String(), nil
}

// FormatKeys counts the key columns of each table.
func (summaryFormatter) FormatKeys(server *core.Server, keys []*core.TableKeys) (string, error) {
	var sb strings.Builder
	if server != nil {
		fmt.Fprintf(&sb, "Schema: %s (%s)\n", server.Schema, server.Dialect)
	}
	for _, k := range keys {
		if k == nil {
			continue
		}
		pk := "none"
		if k.PrimaryKey != nil {
			pk = k.PrimaryKey.Name
		}
		fmt.Fprintf(&sb, "%s: primary key %s, %d foreign keys (%s)\n", k.Table, pk, len(k.ForeignKeys), k.Source)
	}
	return sb.String(), nil
}
