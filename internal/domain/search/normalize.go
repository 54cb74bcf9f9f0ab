package search

import (
	"strings"
	"unicode"
)

// canonicalizeQuery reduces a medicine query to a form where spelling
// variations in spacing and punctuation collide ("Calpol-650" == "calpol 650").
func canonicalizeQuery(q string) string {
	lowered := strings.ToLower(strings.TrimSpace(q))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// punctuation and whitespace both collapse to a single space
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	normalized := strings.TrimSpace(builder.String())
	return strings.Join(strings.Fields(normalized), " ")
}
