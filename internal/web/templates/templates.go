// Package templates renders the HTML views of the upload UI. Components are
// written in the .templ files next to this one; run `templ generate` after
// editing them.
package templates

//go:generate templ generate

// IndexParams are the values shown on the upload form.
type IndexParams struct {
	MarkerText    string
	MarkerScope   string
	LineSeparator string
	SpaceAfterPt  int
	MaxFileSizeMB int64
	Available     int // free generation slots
}

// ColumnRow is one line of the column listing.
type ColumnRow struct {
	Raw   string
	Final string
}

// markerScopes are the choices of the marker_scope select.
var markerScopes = []string{"body", "all"}

// placeholder spells a column name the way a template refers to it.
func placeholder(column string) string {
	return "{{" + column + "}}"
}
