package utils

import "unicode/utf8"

// Truncate cuts s to at most maxLen characters and appends "..." when
// anything was removed. Lengths are counted in runes so multi-byte text is
// never split mid-character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
