package core

// Scope selects which paragraphs of a document a pass visits.
type Scope int

const (
	// ScopeBody is the top-level paragraphs of the main body, excluding
	// tables, headers and footers.
	ScopeBody Scope = iota
	// ScopeAll is every paragraph: body, table cells, headers and footers.
	ScopeAll
)

// ParseScope maps "body" and "all" to a Scope. Anything else is ScopeBody.
func ParseScope(s string) Scope {
	if s == "all" {
		return ScopeAll
	}
	return ScopeBody
}

// String returns the configuration spelling of the scope.
func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "body"
}

// Paragraph is a text-bearing paragraph inside a Document.
type Paragraph interface {
	// Location identifies the paragraph for logs and edit plans, e.g. "body/p[3]".
	Location() string
	// Text returns the paragraph's full text, runs concatenated.
	Text() string
	// SetText replaces the paragraph's text wholesale.
	SetText(text string)
}

// NewParagraph describes a paragraph to be inserted into a Document.
type NewParagraph struct {
	Text         string
	SpaceAfterPt int
}

// Document is a decoded, mutable template. Implementations own the byte-level
// format; the pipeline only reads and rewrites paragraph text and inserts new
// paragraphs.
type Document interface {
	// Paragraphs returns the paragraphs in document order.
	Paragraphs(scope Scope) []Paragraph
	// InsertBefore inserts paragraphs, in order, immediately before anchor.
	InsertBefore(anchor Paragraph, paras []NewParagraph) error
	// Bytes encodes the document.
	Bytes() ([]byte, error)
}
