package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates to maxLen
// bytes. A maxLen of zero disables truncation. Request handlers run
// free-text fields through this before they reach the services.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
