package utils

// Truncate returns s truncated to maxLen characters, with "..." appended if
// truncated. The cut falls on a rune boundary so the result is always valid
// UTF-8. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
