// Package slug canonicalizes human titles and file names into comparable
// article identifiers.
package slug

import (
	"strings"
	"unicode"
)

// Normalize converts a human phrase into a slug: lower-case, whitespace runs
// become single hyphens, every character that is not a letter, digit, hyphen,
// or underscore is dropped, leading/trailing hyphens are trimmed, and hyphen
// runs collapse to one. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s = strings.Trim(b.String(), "-")

	return collapseHyphens(s)
}

// FromPath derives a slug from a file name: the extension-less base name,
// lower-cased with spaces replaced by hyphens.
func FromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(strings.ToLower(base), " ", "-")
}

func collapseHyphens(s string) string {
	if !strings.Contains(s, "--") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
