package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadingBullets  = regexp.MustCompile(`^[-•*\s]+`)
	trailingBullets = regexp.MustCompile(`[-•*\s]+$`)
	repeatedSpace   = regexp.MustCompile(`\s{2,}`)
)

// sanitizeTitle strips decorative bullets, collapses whitespace and
// capitalizes the first letter. The result may be empty.
func sanitizeTitle(s string) string {
	s = leadingBullets.ReplaceAllString(s, "")
	s = trailingBullets.ReplaceAllString(s, "")
	s = repeatedSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// snippet returns the first n characters of s.
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
