package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxEmailLength is the maximum length for account emails in logs
	MaxEmailLength = 254
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the maximum length for general strings in logs
	MaxGeneralStringLength = 2000
	// MaxRecognizedTextLength caps OCR and transcript text in debug logs
	MaxRecognizedTextLength = 4000
)

// SanitizePath sanitizes a URL path for safe logging
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString removes control characters, repairs invalid UTF-8 and
// truncates to maxLength runes
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = filterRunes(s)
	if utf8.RuneCountInString(s) > maxLength {
		s = string([]rune(s)[:maxLength]) + "..."
	}
	return s
}

// filterRunes keeps printable runes plus space, tab, newline and CR
func filterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeEmail sanitizes an account email for safe logging
func SanitizeEmail(email string) string {
	return SanitizeString(email, MaxEmailLength)
}

// SanitizeRecognizedText sanitizes OCR output or a transcript for debug logging
func SanitizeRecognizedText(text string) string {
	return SanitizeString(text, MaxRecognizedTextLength)
}
