package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one spreadsheet data row keyed by final (normalized, aliased)
// column name. Missing cells read as "".
type Record struct {
	values map[string]string
}

// NewRecord builds a record from a map. The map is copied.
func NewRecord(values map[string]string) Record {
	r := Record{values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Get returns the value for key, or "" when absent.
func (r Record) Get(key string) string {
	return r.values[key]
}

// Map returns a copy of the record's values.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Column describes how one spreadsheet header was resolved.
type Column struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Final      string `json:"final"`
}

// RecordSet is the result of loading a sheet.
type RecordSet struct {
	columns []Column
	records []Record
}

// LoadRecords turns decoded rows into records. Row 0 is the header row.
// Fully blank data rows are skipped; if none remain, *EmptyInputError.
func LoadRecords(rows [][]string, vocab *Vocabulary) (*RecordSet, error) {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if len(rows) == 0 {
		return nil, &EmptyInputError{}
	}

	header := rows[0]
	normalized := make([]string, len(header))
	for i, h := range header {
		key := NormalizeKey(h)
		if key == "" {
			key = "COLUNA_" + strconv.Itoa(i+1)
		}
		normalized[i] = key
	}
	final := vocab.Apply(dedupeKeys(normalized))

	columns := make([]Column, len(header))
	for i := range header {
		columns[i] = Column{Raw: strings.TrimSpace(header[i]), Normalized: normalized[i], Final: final[i]}
	}

	var records []Record
	for _, row := range rows[1:] {
		values := make(map[string]string, len(final))
		blank := true
		for i, key := range final {
			var cell string
			if i < len(row) {
				cell = SafeString(row[i])
			}
			if cell != "" {
				blank = false
			}
			values[key] = cell
		}
		if blank {
			continue
		}
		records = append(records, Record{values: values})
	}
	if len(records) == 0 {
		return nil, &EmptyInputError{}
	}

	return &RecordSet{columns: columns, records: records}, nil
}

// dedupeKeys suffixes repeated keys with _2, _3, ... keeping the first as-is.
func dedupeKeys(keys []string) []string {
	used := make(map[string]bool, len(keys))
	out := make([]string, len(keys))
	for i, k := range keys {
		candidate := k
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", k, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// Records returns the records in sheet order.
func (s *RecordSet) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *RecordSet) Len() int { return len(s.records) }

// First returns the first record, the base of the generation context.
func (s *RecordSet) First() Record {
	return s.records[0]
}

// Columns returns the resolved columns in sheet order.
func (s *RecordSet) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// ColumnNames returns the final column names in sheet order.
func (s *RecordSet) ColumnNames() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Final
	}
	return out
}

// Listing returns the final column names, one per line, for operators to
// check their placeholders against.
func (s *RecordSet) Listing() string {
	var b strings.Builder
	for _, c := range s.columns {
		b.WriteString(c.Final)
		b.WriteByte('\n')
	}
	return b.String()
}

// Context is the set of values available to {{KEY}} placeholders.
type Context map[string]string

// BuildContext merges the base record with operator globals. Global keys are
// normalized; globals win on collision.
func BuildContext(base Record, globals map[string]string) Context {
	ctx := Context(base.Map())
	for k, v := range globals {
		key := NormalizeKey(k)
		if key == "" {
			continue
		}
		ctx[key] = v
	}
	return ctx
}

// Lookup finds key as written, then in its normalized form.
func (c Context) Lookup(key string) (string, bool) {
	if v, ok := c[key]; ok {
		return v, true
	}
	v, ok := c[NormalizeKey(key)]
	return v, ok
}
