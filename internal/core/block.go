package core

import (
	"strings"
)

// BlockEntry is the rendered block for one record: one or more lines, and
// whether a blank spacer paragraph follows it.
type BlockEntry struct {
	Lines  []string
	Spacer bool
}

// BlockOptions controls how records are rendered into block entries.
type BlockOptions struct {
	OrderColumn   string
	Columns       []string // final column names composing each line
	LabelColumns  bool
	LineSeparator string
}

// QualifyingRecords keeps records with a non-empty value in column.
// With no column every record qualifies.
func QualifyingRecords(records []Record, column string) []Record {
	if column == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Get(column) != "" {
			out = append(out, r)
		}
	}
	return out
}

// BuildBlockEntries renders records in the order given.
//
// With Columns set each record becomes a single line of its non-empty fields.
// Without Columns, records carrying TEXTO_PORTARIA become a titled group
// ("Portaria nº N" followed by the text, one line per source line, then a
// spacer); any other record becomes one line of all its non-empty fields.
func BuildBlockEntries(records []Record, allColumns []string, opts BlockOptions) []BlockEntry {
	entries := make([]BlockEntry, 0, len(records))
	for _, r := range records {
		switch {
		case len(opts.Columns) > 0:
			entries = append(entries, BlockEntry{Lines: []string{joinFields(r, opts.Columns, opts)}})
		case r.Get(FieldTextoPortaria) != "":
			entries = append(entries, portariaEntry(r, opts.OrderColumn))
		default:
			entries = append(entries, BlockEntry{Lines: []string{joinFields(r, allColumns, opts)}})
		}
	}
	return entries
}

func joinFields(r Record, columns []string, opts BlockOptions) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		v := r.Get(c)
		if v == "" {
			continue
		}
		if opts.LabelColumns {
			v = c + ": " + v
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, opts.LineSeparator)
}

func portariaEntry(r Record, orderColumn string) BlockEntry {
	number := r.Get(orderColumn)
	if number == "" {
		number = r.Get(FieldNumeroPortaria)
	}

	lines := []string{strings.TrimSpace("Portaria nº " + number)}
	text := strings.ReplaceAll(r.Get(FieldTextoPortaria), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return BlockEntry{Lines: lines, Spacer: true}
}
