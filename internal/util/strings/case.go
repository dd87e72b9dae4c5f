package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Add underscore before uppercase letter if:
				// 1. Previous char is lowercase
				// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Common initialisms that should stay fully uppercase in Go identifiers.
var initialisms = map[string]bool{
	"id": true, "url": true, "uri": true, "api": true, "http": true,
	"https": true, "json": true, "xml": true, "sql": true, "html": true,
	"css": true, "ip": true, "tcp": true, "udp": true, "uuid": true,
}

// ToPascalCase converts a lowerCamel or snake_case identifier to an exported
// Go name, keeping common initialisms uppercase (userID -> UserID,
// api_url -> APIURL).
func ToPascalCase(s string) string {
	parts := splitWords(s)
	for i := range parts {
		if initialisms[strings.ToLower(parts[i])] {
			parts[i] = strings.ToUpper(parts[i])
		} else if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// splitWords breaks an identifier on underscores and lower-to-upper case
// transitions.
func splitWords(s string) []string {
	var words []string
	for _, chunk := range strings.Split(s, "_") {
		runes := []rune(chunk)
		start := 0
		for i := 1; i < len(runes); i++ {
			if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
				words = append(words, string(runes[start:i]))
				start = i
			}
		}
		if start < len(runes) {
			words = append(words, string(runes[start:]))
		}
	}
	return words
}
