package reporting

import (
	"bytes"
	"encoding/json"
)

// Record is one materialized result row. Unlike a plain map it remembers its
// field order, so JSON output preserves the declared select-list order:
// bucket alias first, then plain columns, then aggregation aliases.
type Record struct {
	Fields []string
	Values map[string]any
}

// Get returns the value for a field, or nil when absent.
func (r Record) Get(field string) any {
	return r.Values[field]
}

// MarshalJSON emits the record as a JSON object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.Values[field])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
