package voice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics removes diacritical marks from a string (e.g., "Café" -> "Cafe").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// normalizeTranscript prepares a speech transcript for matching: diacritics
// stripped, lowercased, whitespace collapsed.
func normalizeTranscript(s string) string {
	s = removeDiacritics(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
