package pipeline

import (
	"strings"
	"unicode/utf8"
)

// PreviewBytes caps the details of an OUTPUT log entry.
const PreviewBytes = 200

const ellipsis = "…"

// Preview trims s and cuts it to PreviewBytes on a rune boundary, marking the cut.
func Preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= PreviewBytes {
		return s
	}
	return truncateString(s, PreviewBytes) + ellipsis
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
