// internal/vacancy/apollo/normalizer.go
package apollo

import (
	"strings"
	"time"
)

var invisible = strings.NewReplacer("\ufeff", "", "\u200b", "")

// normalizeName strips byte-order and zero-width marks, collapses runs of
// whitespace and lowercases ASCII letters.
func normalizeName(value string) string {
	cleaned := invisible.Replace(value)
	collapsed := strings.Join(strings.Fields(cleaned), " ")
	return asciiLower(collapsed)
}

func asciiLower(value string) string {
	b := []byte(value)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// parseTimestamp accepts RFC3339 (normalized to UTC) or a bare YYYY-MM-DD at
// midnight UTC.
func parseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t, true
	}
	return time.Time{}, false
}
