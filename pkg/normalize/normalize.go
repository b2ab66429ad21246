// Package normalize turns entity names into the canonical keys used to
// match question arguments against identifiers.
package normalize

import (
	"strings"
	"unicode"
)

// Key normalizes text: trim, lower-case, hyphens to underscores, whitespace
// runs to a single underscore, then drop everything that is not a letter or
// an underscore. Key is idempotent.
func Key(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "-", "_")
	text = strings.Join(strings.Fields(text), "_")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '_' || unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsKey reports whether s is non-empty and already in normalized form.
func IsKey(s string) bool {
	return s != "" && Key(s) == s
}
