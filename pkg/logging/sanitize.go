package logging

import "regexp"

const (
	// MaxQueryLogLength caps how much of a SQL statement is logged.
	MaxQueryLogLength = 200
	// RedactedText replaces sensitive data in log output.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx in key-value style DSNs
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@ credentials in URL or mysql tcp() style DSNs
	credentialsPattern = regexp.MustCompile(`(^|[/\s])[^:/@\s]+:[^@/\s]+@`)
)

// SanitizeDSN removes credentials from a connection string before logging.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	sanitized = credentialsPattern.ReplaceAllString(sanitized, "${1}"+RedactedText+"@")
	return sanitized
}

// SanitizeQuery truncates a SQL statement for logging. Literal values never
// appear in builder output (they travel as parameters), so truncation is the
// only concern.
func SanitizeQuery(query string) string {
	if len(query) <= MaxQueryLogLength {
		return query
	}
	return query[:MaxQueryLogLength] + "..."
}
