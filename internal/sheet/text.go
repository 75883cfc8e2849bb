package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiPunct maps typographic punctuation and invisible characters to their
// plain equivalents. It runs before decomposition so NBSP variants collapse
// with ordinary whitespace.
var asciiPunct = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'", "\u2032", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`, "\u2033", `"`,
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2015", "-", "\u2212", "-",
	"\u00a0", " ", "\u2007", " ", "\u202f", " ",
	"\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
)

// NormalizeText strips diacritics, maps curly quotes, dashes and
// non-breaking spaces to ASCII, removes zero-width characters and collapses
// whitespace. It is idempotent.
func NormalizeText(s string) string {
	s = asciiPunct.Replace(s)
	// The chain is stateful, so it is built per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// ParseBool accepts 1/y/yes/true as true, case-insensitively. Everything
// else, including 0/n/no/false and the empty string, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "true":
		return true
	default:
		return false
	}
}

// FormatBool renders a flag for export.
func FormatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
