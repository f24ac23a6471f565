package logging

import (
	"regexp"
	"strings"
)

// Transcripts are private: log lines may carry a short preview of a
// message body for debugging, never the full text, and obvious contact
// data is masked even in the preview.

// RedactedValue is the replacement for masked values.
const RedactedValue = "[REDACTED]"

// snippetRunes is the preview length Snippet keeps.
const snippetRunes = 48

var contactPatterns = []*regexp.Regexp{
	// Email addresses.
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// International phone numbers.
	regexp.MustCompile(`\+[0-9][0-9 ()-]{6,}[0-9]`),
}

// Redact masks contact data in a string.
func Redact(s string) string {
	result := s
	for _, pattern := range contactPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// Snippet returns a redacted, single-line preview of a message body
// suitable for log output.
func Snippet(body string) string {
	s := Redact(strings.Join(strings.Fields(body), " "))
	runes := []rune(s)
	if len(runes) <= snippetRunes {
		return s
	}
	return string(runes[:snippetRunes]) + "..."
}
