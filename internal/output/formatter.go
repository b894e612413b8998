// Package output provides a set of formatters for fixture load results and
// table key metadata. It is extendable and for now provides four formats:
// human, JSON, SQL and summary.
package output

import (
	"errors"
	"fmt"
	"strings"

	"fixie/internal/core"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman   Format = "human"
	FormatJSON    Format = "json"
	FormatSQL     Format = "sql"
	FormatSummary Format = "summary"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatHuman, FormatJSON, FormatSQL, FormatSummary}
}

// Formatter is an interface for formatting load results and key metadata.
type Formatter interface {
	FormatResults([]*core.Result) (string, error)
	FormatKeys(*core.Server, []*core.TableKeys) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to human format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSQL:
		return sqlFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human', 'json', 'sql', or 'summary'", name)
	}
}

type counts struct {
	Tables   int `json:"tables"`
	Records  int `json:"records"`
	Inserted int `json:"inserted"`
	Planned  int `json:"planned"`
	Failed   int `json:"failed"`
}

func countResults(results []*core.Result) counts {
	var c counts
	for _, r := range results {
		if r == nil {
			continue
		}
		c.Tables++
		for _, o := range r.Outcomes {
			c.Records++
			switch o.Status {
			case core.StatusInserted:
				c.Inserted++
			case core.StatusPlanned:
				c.Planned++
			case core.StatusFailed:
				c.Failed++
			}
		}
	}
	return c
}

func formatValue(v any) string {
	return strings.Trim(core.FormatArgs([]any{v}), "[]")
}

// cause strips the statement details a RecordError adds to the driver error.
func cause(err error) error {
	var re *core.RecordError
	if errors.As(err, &re) && re.Err != nil {
		return re.Err
	}
	return err
}
