package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	return emailRegex.MatchString(email)
}

// ValidatePassword validates password strength
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// ValidateUsername validates username format
func ValidateUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return false
	}
	// Allow alphanumeric, underscore, and hyphen
	matched, _ := regexp.MatchString("^[a-zA-Z0-9_-]+$", username)
	return matched
}

// NormalizePhone canonicalizes a Turkish phone number so formatted and
// prefixed inputs key the same record: all non-digits are stripped, the "90"
// country prefix is dropped, and a missing leading "0" is prepended.
func NormalizePhone(phone string) string {
	digits := nonDigitRegex.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "90") && len(digits) == 12 {
		digits = digits[2:]
	}
	if !strings.HasPrefix(digits, "0") && len(digits) == 10 {
		digits = "0" + digits
	}
	return digits
}

// ValidatePhone checks the normalized form is a plausible mobile number.
func ValidatePhone(phone string) bool {
	normalized := NormalizePhone(phone)
	return len(normalized) == 11 && strings.HasPrefix(normalized, "0")
}

var turkishFolding = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "I", "i",
	"İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// FoldTurkish lowercases and strips Turkish diacritics so that searches match
// regardless of keyboard or store collation. Applied to both the query term
// and the candidate field before comparison.
func FoldTurkish(s string) string {
	return strings.ToLower(turkishFolding.Replace(s))
}

// MatchesFolded reports whether the candidate contains the query under
// Turkish diacritic folding.
func MatchesFolded(candidate, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(FoldTurkish(candidate), FoldTurkish(query))
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
