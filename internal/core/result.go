package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTable is returned when a load is requested without a table name.
	ErrEmptyTable = errors.New("table name is empty")
	// ErrNoPrimaryKey is returned when the target table has no primary key column.
	ErrNoPrimaryKey = errors.New("table has no primary key")
)

// Status is the outcome of a single record insert.
type Status string

const (
	StatusInserted Status = "inserted"
	StatusFailed   Status = "failed"
	StatusPlanned  Status = "planned"
)

// RecordError describes a failed insert: the driver error plus the statement
// and values that were attempted.
type RecordError struct {
	Table string
	Name  string
	SQL   string
	Args  []any
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("insert %s record %q: %v\n  Statement: %s\n  Values: %s",
		e.Table, e.Name, e.Err, e.SQL, FormatArgs(e.Args))
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// FormatArgs renders statement arguments for diagnostics.
func FormatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case nil:
			parts = append(parts, "NULL")
		case string:
			parts = append(parts, fmt.Sprintf("%q", v))
		case []byte:
			parts = append(parts, fmt.Sprintf("0x%x", v))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Outcome is the result of loading one named record.
// Record holds the resolved fields whether or not the insert succeeded.
type Outcome struct {
	Name      string
	Record    *Handle
	Status    Status
	SQL       string
	Args      []any
	Literal   string // SQL with Args inlined, for printing
	Err       error
	Duplicate bool
}

// OK reports whether the record was inserted or planned without error.
func (o *Outcome) OK() bool {
	return o.Status != StatusFailed
}

// Result collects the outcomes of one table load, in input order.
type Result struct {
	Table    string
	Keys     *TableKeys
	Outcomes []*Outcome

	index map[string]int
}

// NewResult returns an empty result for table.
func NewResult(table string, keys *TableKeys) *Result {
	return &Result{
		Table: table,
		Keys:  keys,
		index: make(map[string]int),
	}
}

// Add appends o, replacing an earlier outcome with the same name.
func (r *Result) Add(o *Outcome) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[o.Name]; ok {
		r.Outcomes[i] = o
		return
	}
	r.index[o.Name] = len(r.Outcomes)
	r.Outcomes = append(r.Outcomes, o)
}

// Outcome returns the outcome for the record name.
func (r *Result) Outcome(name string) (*Outcome, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.Outcomes[i], true
}

// Handle returns the resolved record for name, including failed records.
func (r *Result) Handle(name string) (*Handle, bool) {
	o, ok := r.Outcome(name)
	if !ok {
		return nil, false
	}
	return o.Record, true
}

// Handles returns every resolved record keyed by name.
func (r *Result) Handles() map[string]*Handle {
	out := make(map[string]*Handle, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.Name] = o.Record
	}
	return out
}

// Names returns the record names in input order.
func (r *Result) Names() []string {
	out := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out = append(out, o.Name)
	}
	return out
}

// Inserted returns the outcomes whose insert succeeded.
func (r *Result) Inserted() []*Outcome {
	return r.filter(StatusInserted)
}

// Failed returns the outcomes whose insert failed.
func (r *Result) Failed() []*Outcome {
	return r.filter(StatusFailed)
}

func (r *Result) filter(status Status) []*Outcome {
	var out []*Outcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the errors of all failed records, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}
