package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/minuta/internal/config"
)

// fakePara is a paragraph of a fakeDoc. Paragraphs outside the body (table
// cells, headers) are only visible in ScopeAll.
type fakePara struct {
	loc     string
	text    string
	body    bool
	spacing int
}

func (p *fakePara) Location() string    { return p.loc }
func (p *fakePara) Text() string        { return p.text }
func (p *fakePara) SetText(text string) { p.text = text }

// fakeDoc is an in-memory Document. Bytes renders one paragraph per line.
type fakeDoc struct {
	paras    []*fakePara
	inserted int
}

func newFakeDoc(body ...string) *fakeDoc {
	d := &fakeDoc{}
	for _, t := range body {
		d.add(t, true)
	}
	return d
}

func (d *fakeDoc) add(text string, body bool) *fakeDoc {
	d.paras = append(d.paras, &fakePara{
		loc:  fmt.Sprintf("p[%d]", len(d.paras)),
		text: text,
		body: body,
	})
	return d
}

func (d *fakeDoc) Paragraphs(scope Scope) []Paragraph {
	var out []Paragraph
	for _, p := range d.paras {
		if p.body || scope == ScopeAll {
			out = append(out, p)
		}
	}
	return out
}

func (d *fakeDoc) InsertBefore(anchor Paragraph, paras []NewParagraph) error {
	for i, p := range d.paras {
		if Paragraph(p) != anchor {
			continue
		}
		added := make([]*fakePara, len(paras))
		for j, np := range paras {
			d.inserted++
			added[j] = &fakePara{
				loc:     fmt.Sprintf("new[%d]", d.inserted),
				text:    np.Text,
				body:    p.body,
				spacing: np.SpaceAfterPt,
			}
		}
		rest := append(added, d.paras[i:]...)
		d.paras = append(d.paras[:i:i], rest...)
		return nil
	}
	return errors.New("anchor not in document")
}

func (d *fakeDoc) Bytes() ([]byte, error) {
	return []byte(strings.Join(d.texts(), "\n")), nil
}

func (d *fakeDoc) texts() []string {
	out := make([]string, len(d.paras))
	for i, p := range d.paras {
		out[i] = p.text
	}
	return out
}

// fakeSheets returns fixed rows, or err.
type fakeSheets struct {
	rows [][]string
	err  error
}

func (f fakeSheets) Decode(string, []byte) ([][]string, error) {
	return f.rows, f.err
}

// fakeCodec parses template bytes as one body paragraph per line and counts
// decode calls.
type fakeCodec struct {
	calls int
	err   error
}

func (f *fakeCodec) Decode(data []byte) (Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return newFakeDoc(strings.Split(string(data), "\n")...), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Generate: config.GenerateConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       5 * time.Second,
			MarkerText:    DefaultMarkerText,
			MarkerScope:   "body",
			LineSeparator: " - ",
			SpaceAfterPt:  6,
		},
	}
}

func newTestService(t *testing.T, sheets SheetDecoder, docs DocumentCodec) *Service {
	t.Helper()
	svc, err := NewService(testConfig(), sheets, docs)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
