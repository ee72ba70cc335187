package core

import (
	"regexp"
	"strings"
)

// placeholderRegex matches {{KEY}} tokens, tolerating inner whitespace. Keys
// may be written with accents ({{Matrícula}}); Context.Lookup folds them.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([\p{L}\p{M}\p{N}_.]+)\s*\}\}`)

// Edit is a planned replacement of one paragraph's text.
type Edit struct {
	Location string
	Before   string
	After    string
	Keys     []string // placeholders that were resolved

	para Paragraph
}

// SubstituteText replaces every resolvable {{KEY}} in text in a single pass.
// Unknown keys are left as written. It returns the new text and the keys
// that were replaced.
func SubstituteText(text string, ctx Context) (string, []string) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	var keys []string
	out := placeholderRegex.ReplaceAllStringFunc(text, func(token string) string {
		key := placeholderRegex.FindStringSubmatch(token)[1]
		v, ok := ctx.Lookup(key)
		if !ok {
			return token
		}
		keys = append(keys, key)
		return v
	})
	return out, keys
}

// PlanSubstitutions scans every paragraph of doc and returns one Edit per
// paragraph whose text would change. The document is not modified.
func PlanSubstitutions(doc Document, ctx Context) []Edit {
	var edits []Edit
	for _, p := range doc.Paragraphs(ScopeAll) {
		before := p.Text()
		after, keys := SubstituteText(before, ctx)
		if after == before {
			continue
		}
		edits = append(edits, Edit{
			Location: p.Location(),
			Before:   before,
			After:    after,
			Keys:     keys,
			para:     p,
		})
	}
	return edits
}

// ApplyEdits writes planned edits to their paragraphs and returns the count.
func ApplyEdits(edits []Edit) int {
	n := 0
	for _, e := range edits {
		if e.para == nil {
			continue
		}
		e.para.SetText(e.After)
		n++
	}
	return n
}
