package core

// validation.go checks a generation's inputs against each other before the
// operator downloads the result.
//
// None of these findings abort a generation: a placeholder with no matching
// column is left literal by design, and a list column that does not exist
// renders as nothing. They are reported as warnings so the operator can fix
// the template or the sheet headers.

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError describes one mismatch between template, sheet and options.
type ValidationError struct {
	Field   string // column or placeholder name
	Value   string // where it was found
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// UnresolvedPlaceholders lists the {{KEY}} tokens still present in doc after
// substitution, one entry per distinct key, sorted by key.
func UnresolvedPlaceholders(doc Document) []ValidationError {
	seen := make(map[string]string)
	for _, p := range doc.Paragraphs(ScopeAll) {
		for _, m := range placeholderRegex.FindAllStringSubmatch(p.Text(), -1) {
			if _, ok := seen[m[1]]; !ok {
				seen[m[1]] = p.Location()
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ValidationError, 0, len(keys))
	for _, k := range keys {
		out = append(out, ValidationError{
			Field:   k,
			Value:   seen[k],
			Message: "placeholder has no matching column or global value",
		})
	}
	return out
}

// CheckColumns reports requested columns that are absent from available.
// Requested names are resolved through the vocabulary first.
func CheckColumns(option string, requested, available []string, vocab *Vocabulary) []ValidationError {
	present := make(map[string]bool, len(available))
	for _, c := range available {
		present[c] = true
	}

	var out []ValidationError
	for _, name := range requested {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if col := vocab.Canonical(name, available); !present[col] {
			out = append(out, ValidationError{
				Field:   name,
				Value:   option,
				Message: fmt.Sprintf("column does not exist (resolved as %s)", col),
			})
		}
	}
	return out
}

// Warnings formats validation errors for display, one line each.
func Warnings(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		if e.Value != "" {
			out[i] = fmt.Sprintf("%s (%s)", e.Error(), e.Value)
		} else {
			out[i] = e.Error()
		}
	}
	return out
}
