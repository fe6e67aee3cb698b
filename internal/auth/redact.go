package auth

import "regexp"

// sensitivePattern matches variable-name fragments that indicate secret
// material (spec.md §4.3 "Secret handling").
var sensitivePattern = regexp.MustCompile(`(?i)token|secret|password|pwd|key|credential|cert|signing|jwt_|bearer|oauth_`)

// sensitiveExceptions are never redacted even though their names match
// sensitivePattern.
var sensitiveExceptions = map[string]bool{
	"auth_enabled":      true,
	"mcp_jwt_issuer":    true,
	"mcp_jwt_audience":  true,
	"mcp_provider_type": true,
	"mcp_jwt_jwks_uri":  true,
}

// IsSensitiveVariable reports whether a variable name should have its value
// redacted before it is ever printed.
func IsSensitiveVariable(name string) bool {
	if sensitiveExceptions[name] {
		return false
	}
	return sensitivePattern.MatchString(name)
}

// RedactValue renders a sensitive value as a partial mask: the first two
// characters plus asterisks for values over four characters long, or a flat
// "***" for anything shorter. The "🔒 " marker is prepended so redacted
// lines are visually distinct from ordinary ones.
func RedactValue(value string) string {
	if len(value) > 4 {
		return "🔒 " + value[:2] + "***"
	}
	return "🔒 ***"
}

// RedactVariable renders a (name, value) pair for display, redacting the
// value when the name is sensitive.
func RedactVariable(name, value string) string {
	if IsSensitiveVariable(name) {
		return RedactValue(value)
	}
	return value
}
