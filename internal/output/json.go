package output

import (
	"github.com/goccy/go-json"

	"fixie/internal/core"
)

type jsonFormatter struct{}

type recordPayload struct {
	Name      string         `json:"name"`
	Status    core.Status    `json:"status"`
	Fields    map[string]any `json:"fields,omitempty"`
	SQL       string         `json:"sql,omitempty"`
	Error     string         `json:"error,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
}

type tablePayload struct {
	Table   string          `json:"table"`
	Keys    *core.TableKeys `json:"keys,omitempty"`
	Records []recordPayload `json:"records"`
}

type resultsPayload struct {
	Format  string         `json:"format"`
	Summary counts         `json:"summary"`
	Tables  []tablePayload `json:"tables"`
}

type keysPayload struct {
	Format string            `json:"format"`
	Server *core.Server      `json:"server,omitempty"`
	Tables []*core.TableKeys `json:"tables"`
}

type Payload interface {
	resultsPayload | keysPayload
}

func (jsonFormatter) FormatResults(results []*core.Result) (string, error) {
	payload := resultsPayload{
		Format:  string(FormatJSON),
		Summary: countResults(results),
		Tables:  make([]tablePayload, 0, len(results)),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		table := tablePayload{
			Table:   r.Table,
			Keys:    r.Keys,
			Records: make([]recordPayload, 0, len(r.Outcomes)),
		}
		for _, o := range r.Outcomes {
			rec := recordPayload{
				Name:      o.Name,
				Status:    o.Status,
				SQL:       o.SQL,
				Duplicate: o.Duplicate,
			}
			if o.Record != nil {
				rec.Fields = o.Record.Map()
			}
			if o.Err != nil {
				rec.Error = o.Err.Error()
			}
			table.Records = append(table.Records, rec)
		}
		payload.Tables = append(payload.Tables, table)
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatKeys(server *core.Server, keys []*core.TableKeys) (string, error) {
	payload := keysPayload{
		Format: string(FormatJSON),
		Server: server,
		Tables: make([]*core.TableKeys, 0, len(keys)),
	}
	for _, k := range keys {
		if k != nil {
			payload.Tables = append(payload.Tables, k)
		}
	}
	return marshalJSON(payload)
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
