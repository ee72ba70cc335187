package core

import (
	"fmt"
	"strings"
)

// DefaultMarkerText is the marker searched for when none is configured.
const DefaultMarkerText = "INSERIR CAMPO PORTARIAS"

// BlockStyle holds paragraph-level formatting for inserted lines.
type BlockStyle struct {
	SpaceAfterPt int
	Scope        Scope
}

// FindMarker returns the first paragraph in scope whose text contains marker.
func FindMarker(doc Document, marker string, scope Scope) (Paragraph, error) {
	if marker == "" {
		return nil, &MarkerNotFoundError{Marker: marker, Scope: scope}
	}
	for _, p := range doc.Paragraphs(scope) {
		if strings.Contains(p.Text(), marker) {
			return p, nil
		}
	}
	return nil, &MarkerNotFoundError{Marker: marker, Scope: scope}
}

// InsertMarkerBlock replaces the first paragraph containing marker with the
// rendered entries. The marker paragraph is emptied and the new paragraphs are
// inserted before it, in entry order. Later occurrences of the marker are left
// alone. Returns the number of paragraphs inserted.
func InsertMarkerBlock(doc Document, marker string, entries []BlockEntry, style BlockStyle) (int, error) {
	anchor, err := FindMarker(doc, marker, style.Scope)
	if err != nil {
		return 0, err
	}

	var paras []NewParagraph
	for _, e := range entries {
		for _, line := range e.Lines {
			paras = append(paras, NewParagraph{Text: line, SpaceAfterPt: style.SpaceAfterPt})
		}
		if e.Spacer {
			paras = append(paras, NewParagraph{SpaceAfterPt: style.SpaceAfterPt})
		}
	}

	anchor.SetText("")
	if len(paras) == 0 {
		return 0, nil
	}
	if err := doc.InsertBefore(anchor, paras); err != nil {
		return 0, fmt.Errorf("insert block at %s: %w", anchor.Location(), err)
	}
	return len(paras), nil
}
