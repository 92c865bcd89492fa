package fincal

import (
	"strings"
	"unicode/utf8"
)

// maxTextLen is the maximum number of characters kept in names, notes and
// categories.
const maxTextLen = 80

// clampText trims s and cuts it to maxTextLen characters.
func clampText(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxTextLen]))
}

// sameName compares names the way fund names are compared for uniqueness.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
