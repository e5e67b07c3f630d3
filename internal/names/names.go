// Package names cleans and matches Turkish province names coming from
// spreadsheet exports and GeoJSON files.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaces   = regexp.MustCompile(`\s+`)
	numeric  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	sentinel = regexp.MustCompile(`(?i)total|toplam|turkey|türkiye|provinces|year`)
)

// Clean trims, collapses inner whitespace and title-cases a city name with
// Turkish casing rules ("İSTANBUL" -> "İstanbul", "ığdır" -> "Iğdır").
func Clean(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = spaces.ReplaceAllString(s, " ")
	return cases.Title(language.Turkish).String(s)
}

// Key folds a name to upper-case ASCII for matching across sources that
// disagree on diacritics and dotted/dotless i.
func Key(s string) string {
	s = cases.Upper(language.Turkish).String(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return spaces.ReplaceAllString(folded, " ")
}

// IsSentinel reports whether a city cell is a header, total or year row
// rather than a province.
func IsSentinel(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return true
	}
	if numeric.MatchString(s) {
		return true
	}
	return sentinel.MatchString(s)
}
