package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nicknameStrip = regexp.MustCompile(`[^\p{L}\p{N}_\-]+`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeNickname drops whitespace and punctuation from a provider-supplied display name
func SanitizeNickname(nickname string) string {
	return nicknameStrip.ReplaceAllString(strings.TrimSpace(nickname), "")
}

// HashToken returns the hex SHA-256 digest under which a token is stored
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
