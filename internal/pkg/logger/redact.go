package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "jane.doe@example.com" → "ja***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com".
// Anything that is not a single local@domain pair becomes "***@***".
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}
