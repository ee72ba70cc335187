// Package docx reads and writes WordprocessingML (.docx) files.
//
// Only the XML parts that carry visible paragraphs are parsed: the main
// document, headers and footers. Every other zip entry is copied through
// byte for byte when the document is re-encoded, so images, styles,
// numbering and relationships survive untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/JonMunkholm/minuta/internal/core"
)

const mainPart = "word/document.xml"

// ErrNotDocx is returned for input that is not a zip with a main document part.
var ErrNotDocx = errors.New("not a docx file")

// Codec implements core.DocumentCodec.
type Codec struct{}

// NewCodec returns a Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Decode parses data as a .docx package.
func (c *Codec) Decode(data []byte) (core.Document, error) {
	return Open(data)
}

// part is one parsed XML part of the package.
type part struct {
	name  string // zip entry name, e.g. word/header1.xml
	label string // location prefix, e.g. header1
	xml   *etree.Document
}

// Document is a decoded .docx package.
type Document struct {
	files []*zip.File
	parts map[string]*part
	order []*part // main document first, then headers and footers by name
	body  *etree.Element
}

// Open decodes a .docx package held in memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	d := &Document{files: zr.File, parts: make(map[string]*part)}
	var extra []*part
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		p, err := readPart(f)
		if err != nil {
			return nil, err
		}
		d.parts[f.Name] = p
		if f.Name != mainPart {
			extra = append(extra, p)
		}
	}

	main, ok := d.parts[mainPart]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDocx, mainPart)
	}
	d.body = main.xml.FindElement("//w:body")
	if d.body == nil {
		return nil, fmt.Errorf("%w: %s has no w:body", ErrNotDocx, mainPart)
	}

	sort.Slice(extra, func(i, j int) bool { return extra[i].name < extra[j].name })
	d.order = append([]*part{main}, extra...)
	return d, nil
}

// isTextPart reports whether a zip entry holds paragraphs we edit.
func isTextPart(name string) bool {
	if name == mainPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(file, ".xml") {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}

func readPart(f *zip.File) (*part, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}

	label := strings.TrimSuffix(path.Base(f.Name), ".xml")
	return &part{name: f.Name, label: label, xml: doc}, nil
}

// Paragraphs returns the paragraphs in scope in document order. ScopeBody is
// the direct children of w:body; ScopeAll adds table cells, text boxes,
// headers and footers.
func (d *Document) Paragraphs(scope core.Scope) []core.Paragraph {
	var out []core.Paragraph
	if scope == core.ScopeBody {
		for i, el := range d.body.SelectElements("w:p") {
			out = append(out, &Paragraph{el: el, loc: fmt.Sprintf("body/p[%d]", i)})
		}
		return out
	}

	for _, p := range d.order {
		for i, el := range p.xml.FindElements("//w:p") {
			out = append(out, &Paragraph{el: el, loc: fmt.Sprintf("%s/p[%d]", p.label, i)})
		}
	}
	return out
}

// InsertBefore inserts new paragraphs immediately before anchor, which must
// be a paragraph returned by this document.
func (d *Document) InsertBefore(anchor core.Paragraph, paras []core.NewParagraph) error {
	a, ok := anchor.(*Paragraph)
	if !ok || a.el.Parent() == nil {
		return fmt.Errorf("anchor %s does not belong to this document", anchor.Location())
	}

	parent := a.el.Parent()
	idx := a.el.Index()
	for i, np := range paras {
		parent.InsertChildAt(idx+i, newParagraphElement(np))
	}
	return nil
}

// Bytes re-encodes the package. Entries keep their original order; parsed
// parts are serialized again and everything else is copied raw.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range d.files {
		p, parsed := d.parts[f.Name]
		if !parsed {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		raw, err := p.xml.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", f.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// newParagraphElement builds <w:p> with the given spacing after, in twentieths
// of a point, and a single run.
func newParagraphElement(np core.NewParagraph) *etree.Element {
	p := etree.NewElement("w:p")
	spacing := p.CreateElement("w:pPr").CreateElement("w:spacing")
	spacing.CreateAttr("w:after", fmt.Sprint(np.SpaceAfterPt*20))
	if np.Text != "" {
		appendRun(p, nil, np.Text)
	}
	return p
}
