// Package search provides the text normalization used by the record
// list's search filter. Client and property names on intake forms are
// mostly Portuguese ("João", "Conceição", "Av. da República"), so the
// filter must match regardless of accents and casing.
//
// The package is deliberately small and stateless:
//
//   - No logging in the library (callers decide how/what to log)
//   - Deterministic output for a given input
//   - Safe for concurrent use (pure functions, shared immutable transform)
//
// Normalize is applied both when building a record's stored search text
// (repo layer, on every write) and to the incoming query term, so both
// sides of the comparison live in the same folded space.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform decomposes to NFD, strips combining marks, and
// recomposes to NFC: "São João" → "Sao Joao".
var foldTransform = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases s, strips diacritics, and collapses runs of
// whitespace to single spaces. The empty string normalizes to itself.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldTransform, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IndexText builds the stored search text for a record from its
// searchable parts (client name, address, cadastral article, …).
// Empty parts are dropped; the result is a single normalized line.
func IndexText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, " ")
}
