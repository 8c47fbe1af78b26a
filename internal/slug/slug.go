// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen: "Title 1" -> "title-1".
func Make(title string) string {
	var b strings.Builder
	prevHyphen := true // 避免开头出现 '-'
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
