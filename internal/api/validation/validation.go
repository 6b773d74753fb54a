package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field length limits for free-text input.
const (
	MaxNameLength  = 200
	MaxShortLength = 320
	MaxTextLength  = 10000
	MaxTags        = 50
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	phoneRegex = regexp.MustCompile(`^\+?[0-9 ().\-]{3,32}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidPhone accepts digits with common separators and an optional
// leading plus.
func IsValidPhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}
	return strings.IndexFunc(phone, unicode.IsDigit) >= 0
}

// IsValidImageURL accepts absolute http and https URLs.
func IsValidImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidPassword checks password strength
func IsValidPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 128 {
		return false, "Password must be at most 128 characters"
	}

	var hasLetter, hasOther bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		default:
			hasOther = true
		}
	}

	if !hasLetter {
		return false, "Password must contain at least one letter"
	}
	if !hasOther {
		return false, "Password must contain at least one number, space or symbol"
	}

	return true, ""
}

// TooLong reports whether s has more than max characters.
func TooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
