package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Paragraph is a <w:p> element.
type Paragraph struct {
	el  *etree.Element
	loc string
}

// Location identifies the paragraph, e.g. "body/p[3]" or "header1/p[0]".
func (p *Paragraph) Location() string { return p.loc }

// Text concatenates the paragraph's text runs. Tabs and breaks are rendered
// as "\t" and "\n". Text inside nested text boxes belongs to those boxes'
// own paragraphs and is skipped.
func (p *Paragraph) Text() string {
	var b strings.Builder
	walkText(p.el, &b)
	return b.String()
}

func walkText(el *etree.Element, b *strings.Builder) {
	for _, child := range el.ChildElements() {
		if child.Space != "w" {
			walkText(child, b)
			continue
		}
		switch child.Tag {
		case "t":
			b.WriteString(child.Text())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		case "txbxContent", "del", "pPr", "rPr":
		default:
			walkText(child, b)
		}
	}
}

// SetText replaces the paragraph's text with a single run holding text.
// Only text is replaced: drawings, field codes, bookmarks, text boxes and
// other runs without text stay where they were. Paragraph properties are
// kept, and so are the character properties of the first text run, so the
// new text looks like the old text's start. The new run takes the place of
// the first text-bearing child.
func (p *Paragraph) SetText(text string) {
	var rPr *etree.Element
	if r := firstTextRun(p.el); r != nil {
		if props := r.SelectElement("w:rPr"); props != nil {
			rPr = props.Copy()
		}
	}

	pos := -1
	for _, child := range p.el.ChildElements() {
		if skipSubtree(child) || !hasText(child) {
			continue
		}
		if pos < 0 {
			pos = child.Index()
		}
		if isTextLeaf(child) {
			p.el.RemoveChild(child)
			continue
		}
		stripText(child)
		if isEmptyContainer(child) {
			p.el.RemoveChild(child)
		}
	}

	if text == "" {
		return
	}
	r := newRun(rPr, text)
	if pos < 0 {
		p.el.AddChild(r)
		return
	}
	p.el.InsertChildAt(pos, r)
}

// isTextLeaf reports whether el is one of the elements Text renders.
func isTextLeaf(el *etree.Element) bool {
	if el.Space != "w" {
		return false
	}
	switch el.Tag {
	case "t", "tab", "br", "cr":
		return true
	}
	return false
}

// skipSubtree reports elements whose content Text ignores.
func skipSubtree(el *etree.Element) bool {
	if el.Space != "w" {
		return false
	}
	switch el.Tag {
	case "txbxContent", "del", "pPr", "rPr":
		return true
	}
	return false
}

// hasText reports whether el contributes to the paragraph's Text.
func hasText(el *etree.Element) bool {
	if isTextLeaf(el) {
		return true
	}
	for _, child := range el.ChildElements() {
		if !skipSubtree(child) && hasText(child) {
			return true
		}
	}
	return false
}

// stripText removes the text leaves below el, dropping runs and wrappers
// that are left with nothing but properties.
func stripText(el *etree.Element) {
	for _, child := range el.ChildElements() {
		switch {
		case skipSubtree(child):
		case isTextLeaf(child):
			el.RemoveChild(child)
		default:
			stripText(child)
			if isEmptyContainer(child) {
				el.RemoveChild(child)
			}
		}
	}
}

// isEmptyContainer reports a run or inline wrapper holding only properties.
func isEmptyContainer(el *etree.Element) bool {
	if el.Space != "w" {
		return false
	}
	switch el.Tag {
	case "r", "hyperlink", "smartTag", "ins":
	default:
		return false
	}
	for _, child := range el.ChildElements() {
		if !strings.HasSuffix(child.Tag, "Pr") {
			return false
		}
	}
	return true
}

// firstTextRun finds the first <w:r> of el that carries text.
func firstTextRun(el *etree.Element) *etree.Element {
	for _, child := range el.ChildElements() {
		if skipSubtree(child) {
			continue
		}
		if child.Space == "w" && child.Tag == "r" {
			if hasText(child) {
				return child
			}
			continue
		}
		if r := firstTextRun(child); r != nil {
			return r
		}
	}
	return nil
}

// appendRun adds a run holding text to p.
func appendRun(p *etree.Element, rPr *etree.Element, text string) {
	p.AddChild(newRun(rPr, text))
}

// newRun builds <w:r> with optional properties, mapping "\t" and "\n" to
// <w:tab/> and <w:br/>.
func newRun(rPr *etree.Element, text string) *etree.Element {
	r := etree.NewElement("w:r")
	if rPr != nil {
		r.AddChild(rPr)
	}

	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(seg.String())
		seg.Reset()
	}

	for _, c := range text {
		switch c {
		case '\t':
			flush()
			r.CreateElement("w:tab")
		case '\n':
			flush()
			r.CreateElement("w:br")
		case '\r':
		default:
			seg.WriteRune(c)
		}
	}
	flush()
	return r
}
