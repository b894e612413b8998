package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"fixie/internal/core"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	planColor = color.New(color.FgCyan)
	headColor = color.New(color.Bold)
	dimColor  = color.New(color.Faint)
)

type humanFormatter struct{}

// FormatResults lists every record with its status and key values.
func (humanFormatter) FormatResults(results []*core.Result) (string, error) {
	var sb strings.Builder
	for _, r := range results {
		if r == nil {
			continue
		}
		writeTableHeader(&sb, r)
		for _, o := range r.Outcomes {
			writeOutcome(&sb, r, o)
		}
		sb.WriteString("\n")
	}

	c := countResults(results)
	fmt.Fprintf(&sb, "%d tables, %d records: %s, %s, %s\n",
		c.Tables, c.Records,
		okColor.Sprintf("%d inserted", c.Inserted),
		planColor.Sprintf("%d planned", c.Planned),
		failColor.Sprintf("%d failed", c.Failed),
	)
	return sb.String(), nil
}

func writeTableHeader(sb *strings.Builder, r *core.Result) {
	sb.WriteString(headColor.Sprint(r.Table))
	if r.Keys != nil {
		sb.WriteString(dimColor.Sprintf(" (keys from %s)", r.Keys.Source))
	}
	sb.WriteString("\n")
}

func writeOutcome(sb *strings.Builder, r *core.Result, o *core.Outcome) {
	var status string
	switch o.Status {
	case core.StatusInserted:
		status = okColor.Sprint("inserted")
	case core.StatusPlanned:
		status = planColor.Sprint("planned ")
	default:
		status = failColor.Sprint("failed  ")
	}
	fmt.Fprintf(sb, "  %s %s", status, o.Name)

	if keys := keyValues(r.Keys, o.Record); keys != "" {
		sb.WriteString(dimColor.Sprint(" " + keys))
	}
	sb.WriteString("\n")

	if o.Err != nil {
		fmt.Fprintf(sb, "           %s\n", failColor.Sprint(cause(o.Err).Error()))
		if o.Duplicate {
			sb.WriteString("           duplicate key: the record may already be loaded\n")
		}
	}
}

// keyValues renders the primary and foreign key values of a record.
func keyValues(keys *core.TableKeys, h *core.Handle) string {
	if keys == nil || h == nil {
		return ""
	}
	var parts []string
	if keys.PrimaryKey != nil {
		if v, ok := h.Get(keys.PrimaryKey.Name); ok {
			parts = append(parts, keys.PrimaryKey.Name+"="+formatValue(v))
		}
	}
	for _, fk := range keys.ForeignKeys {
		if v, ok := h.Get(fk.Name); ok {
			parts = append(parts, fk.Name+"="+formatValue(v))
		}
	}
	return strings.Join(parts, " ")
}

// FormatKeys describes the server and the key columns of each table.
func (humanFormatter) FormatKeys(server *core.Server, keys []*core.TableKeys) (string, error) {
	var sb strings.Builder
	if server != nil {
		fmt.Fprintf(&sb, "%s %s, schema %s\n\n", server.Dialect, server.Version, headColor.Sprint(server.Schema))
	}
	for _, k := range keys {
		if k == nil {
			continue
		}
		writeKeys(&sb, k, "")
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func writeKeys(sb *strings.Builder, k *core.TableKeys, prefix string) {
	fmt.Fprintf(sb, "%s%s\n", prefix, headColor.Sprint(k.Table))
	if k.PrimaryKey != nil {
		fmt.Fprintf(sb, "%s  primary key: %s %s\n", prefix, k.PrimaryKey.Name, k.PrimaryKey.Type)
	} else {
		fmt.Fprintf(sb, "%s  primary key: %s\n", prefix, failColor.Sprint("none"))
	}
	if len(k.ForeignKeys) == 0 {
		fmt.Fprintf(sb, "%s  foreign keys: none (%s)\n", prefix, k.Source)
		return
	}
	fmt.Fprintf(sb, "%s  foreign keys (%s):\n", prefix, k.Source)
	for _, fk := range k.ForeignKeys {
		ref := fk.RefTable
		if ref == "" {
			ref = "?"
		}
		fmt.Fprintf(sb, "%s    %s %s -> %s\n", prefix, fk.Name, fk.Type, ref)
	}
}
