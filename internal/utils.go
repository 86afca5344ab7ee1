package internal

import (
	"strings"

	"github.com/google/uuid"
)

// Version is the examplegen release version
const Version = "0.3.0"

// NewRunID returns a unique identifier for one examplegen run.
// It is logged with every batch and stored by the sqlite sink.
func NewRunID() string {
	return uuid.NewString()
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
