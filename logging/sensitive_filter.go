package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns contains compiled regex patterns for detecting sensitive
// data. Compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI API keys: sk-... (legacy) or sk-proj-... (project-scoped)
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	// Bearer tokens on Authorization headers
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),
	// Generic secret assignments
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldMarkers are field-name fragments that indicate sensitive data
var sensitiveFieldMarkers = []string{
	"OPENAI_API_KEY",
	"API_KEY",
	"APIKEY",
	"PASSWORD",
	"SECRET",
	"TOKEN",
}

// RedactSensitiveData scans a string value and redacts any detected
// sensitive data. This is a pure function.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// RedactField redacts a field value if the field name indicates sensitive
// data, and scans the value itself otherwise.
func RedactField(fieldName, fieldValue string) string {
	if IsSensitiveField(fieldName) {
		return RedactedPlaceholder
	}
	return RedactSensitiveData(fieldValue)
}

// IsSensitiveField returns true if the field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	upperName := strings.ToUpper(fieldName)
	for _, marker := range sensitiveFieldMarkers {
		if strings.Contains(upperName, marker) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData returns true if the value matches any sensitive
// data pattern.
func ContainsSensitiveData(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
