// Package normalize canonicalizes company names into comparison keys.
package normalize

import (
	"regexp"
	"strings"
)

// MinKeyLength is the shortest normalized name considered resolvable.
// Shorter results are rejected at the store boundary.
const MinKeyLength = 2

var (
	parenExpr   = regexp.MustCompile(`\([^)]*\)`)
	bracketExpr = regexp.MustCompile(`\[[^]]*\]`)
	// Keep letters, digits, underscore, whitespace, '-', '.', '&'.
	symbolExpr = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.&]`)
	spaceExpr  = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"주식회사", " ",
		"㈜", " ",
	)
)

// Name maps a raw company name to its canonical comparison key: strips
// parenthesized/bracketed text and corporate-entity tokens, reduces
// punctuation to spaces, collapses whitespace, and lower-cases. Total and
// deterministic; empty input is returned unchanged.
func Name(raw string) string {
	if raw == "" {
		return raw
	}

	s := parenExpr.ReplaceAllString(raw, "")
	s = bracketExpr.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	s = symbolExpr.ReplaceAllString(s, " ")
	s = spaceExpr.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return dropEntityWords(s)
}

// Resolvable reports whether two names denote the same company key of
// usable length.
func Resolvable(key string) bool {
	return len([]rune(key)) >= MinKeyLength
}

// dropEntityWords removes standalone corporate-form words ("주") that
// survive token replacement only when they stand alone.
func dropEntityWords(s string) string {
	if !strings.Contains(s, "주") {
		return s
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if f == "주" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
