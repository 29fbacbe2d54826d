// Package slug derives URL-safe identifiers from human-entered titles.
//
// Slugs are generated client-side for ergonomics (auto-fill while typing a
// title) but are always re-validated against the grammar before submission:
// the contract must hold even when the generator is bypassed by direct
// edits to the slug field.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

// Pattern is the slug grammar, anchored at both ends: groups of lowercase
// alphanumerics separated by single hyphens. It mirrors the pattern
// constraint on the slug input control so both sides reject the same set.
const Pattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

var (
	slugRE    = regexp.MustCompile(Pattern)
	stripRE   = regexp.MustCompile(`[^\w\s-]`)
	hyphenRE  = regexp.MustCompile(`[\s_-]+`)
	trimEdges = regexp.MustCompile(`^-+|-+$`)
)

// Generate converts free text into a slug: lowercase, trim surrounding
// whitespace, strip every rune that is not a word character, whitespace, or
// hyphen, collapse runs of whitespace/underscore/hyphen into a single
// hyphen, and trim leading/trailing hyphens.
//
// Whitespace means any Unicode whitespace: NBSP, em space, and ideographic
// space separate words just like ASCII spaces do. Go's regexp \s is
// ASCII-only, so those runes are normalized to plain spaces before the
// regex passes; without that they would be stripped instead of hyphenated.
//
// Generate is total and deterministic; the empty string maps to the empty
// string. It is also idempotent: re-slugging a slug is a no-op.
func Generate(text string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))
	s = strings.TrimSpace(s)
	s = stripRE.ReplaceAllString(s, "")
	s = hyphenRE.ReplaceAllString(s, "-")
	return trimEdges.ReplaceAllString(s, "")
}

// Validate reports whether candidate matches the slug grammar. The empty
// string, doubled hyphens, and leading/trailing hyphens are all invalid.
func Validate(candidate string) bool {
	return slugRE.MatchString(candidate)
}
