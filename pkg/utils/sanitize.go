package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// SanitizeString removes potentially dangerous characters and escapes HTML
func SanitizeString(input string) string {
	// Trim whitespace
	trimmed := strings.TrimSpace(input)

	// Escape HTML entities
	escaped := html.EscapeString(trimmed)

	return escaped
}

// SanitizeEmail normalizes an email address. Lookups and writes always go
// through it, so addresses are compared case-insensitively.
func SanitizeEmail(email string) string {
	// Convert to lowercase and trim
	email = strings.ToLower(strings.TrimSpace(email))

	// Remove any HTML tags
	email = stripHTML(email)

	// Remove any control characters
	email = removeControlChars(email)

	return email
}

// SanitizePhone sanitizes phone number input
func SanitizePhone(phone string) string {
	// Trim whitespace
	phone = strings.TrimSpace(phone)

	// Remove any HTML tags
	phone = stripHTML(phone)

	// Remove any non-digit, nonplus, non-dash, non-space characters
	var result strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeText sanitizes multi-line text input
func SanitizeText(input string) string {
	// Trim whitespace
	trimmed := strings.TrimSpace(input)

	// Escape HTML entities
	escaped := html.EscapeString(trimmed)

	// Remove any control characters except newlines and tabs
	var result strings.Builder
	for _, r := range escaped {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

func stripHTML(input string) string {
	return htmlTagRegex.ReplaceAllString(input, "")
}

// removeControlChars removes control characters from string
func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
