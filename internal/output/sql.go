package output

import (
	"fmt"
	"strings"

	"fixie/internal/core"
)

type sqlFormatter struct{}

// FormatResults prints the statements of every record with values inlined,
// ready to be replayed. Failed records are kept as comments.
func (sqlFormatter) FormatResults(results []*core.Result) (string, error) {
	var sb strings.Builder
	sb.WriteString("-- fixie fixtures\n")

	c := countResults(results)
	if c.Records == 0 {
		sb.WriteString("\n-- No records.\n")
		return sb.String(), nil
	}

	for _, r := range results {
		if r == nil || len(r.Outcomes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n-- %s\n", r.Table)
		for _, o := range r.Outcomes {
			writeStatement(&sb, o)
		}
	}
	return sb.String(), nil
}

func writeStatement(sb *strings.Builder, o *core.Outcome) {
	stmt := o.Literal
	if stmt == "" {
		stmt = o.SQL
	}
	if stmt == "" {
		fmt.Fprintf(sb, "-- %s: no statement\n", o.Name)
		return
	}
	if !strings.HasSuffix(stmt, ";") {
		stmt += ";"
	}

	if o.Status == core.StatusFailed {
		fmt.Fprintf(sb, "-- %s failed: %s\n", o.Name, firstLine(errorText(o)))
		writeAsComment(sb, stmt)
		return
	}
	sb.WriteString(stmt)
	sb.WriteString("\n")
}

func errorText(o *core.Outcome) string {
	if o.Err == nil {
		return "unknown error"
	}
	return cause(o.Err).Error()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func writeAsComment(sb *strings.Builder, stmt string) {
	for line := range strings.SplitSeq(stmt, "\n") {
		sb.WriteString("-- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// FormatKeys prints key metadata as SQL comments.
func (sqlFormatter) FormatKeys(server *core.Server, keys []*core.TableKeys) (string, error) {
	var sb strings.Builder
	if server != nil {
		fmt.Fprintf(&sb, "-- %s %s, schema %s\n", server.Dialect, server.Version, server.Schema)
	}
	for _, k := range keys {
		if k != nil {
			writeKeys(&sb, k, "-- ")
		}
	}
	return sb.String(), nil
}
