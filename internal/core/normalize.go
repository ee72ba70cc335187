package core

// normalize.go canonicalizes spreadsheet header text and cell values.
//
// Header keys must match the {{KEY}} placeholders operators type into their
// templates, so every header goes through the same folding:
//
//	"Matrícula"   -> "MATRICULA"
//	"Nº Atesto"   -> "NO_ATESTO"
//	" Posto/Grad" -> "POSTO_GRAD"

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonKeyRun matches every maximal run of characters that cannot appear in a key.
var nonKeyRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeKey converts arbitrary header text to a NormalizedKey.
// The result is idempotent: NormalizeKey(NormalizeKey(s)) == NormalizeKey(s).
// An empty result is valid and means "unnamed column".
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	s = foldASCII(s)
	s = nonKeyRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToUpper(s)
}

// foldASCII decomposes accented characters and drops the combining marks.
// A fresh transformer is built per call; transform.Chain values are stateful.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// nullLike lists cell spellings that spreadsheet exports use for "no value".
var nullLike = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"nat":  true,
	"#n/a": true,
}

// SafeString trims a cell value, unwraps Excel text formulas (="0123") and
// maps missing-value sentinels to "".
func SafeString(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, `="`) && strings.HasSuffix(v, `"`) && len(v) >= 3 {
		v = strings.TrimSpace(v[2 : len(v)-1])
	}
	if nullLike[strings.ToLower(v)] {
		return ""
	}
	return v
}
