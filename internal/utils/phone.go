package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
)

func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(nonPhoneChars.ReplaceAllString(phone, ""))
}

// NormalizePhone strips formatting and makes sure the number carries a
// leading +, which both SMS providers require.
func NormalizePhone(phone string) string {
	normalized := nonPhoneChars.ReplaceAllString(phone, "")
	if normalized == "" {
		return ""
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}
