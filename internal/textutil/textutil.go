package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ContainsHan checks if a string contains Chinese characters.
func ContainsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// SanitizeComment makes a string safe for embedding in an XML comment.
// XML forbids "--" inside comments and a trailing "-".
func SanitizeComment(s string) string {
	s = strings.ReplaceAll(s, "--", "—")
	s = strings.TrimSuffix(s, "-")
	return s
}
