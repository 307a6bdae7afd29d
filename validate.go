package auth

import (
	"regexp"
	"strings"
)

var (
	markupPattern = regexp.MustCompile(`<[^>]*>`)
	emailPattern  = regexp.MustCompile(`^[^\s@<>]+@[^\s@<>]+\.[^\s@<>]+$`)
)

// SanitizeEmail strips markup, trims whitespace, and lowercases the address
// before it is used for lookups.
func SanitizeEmail(email string) string {
	email = markupPattern.ReplaceAllString(email, "")
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
