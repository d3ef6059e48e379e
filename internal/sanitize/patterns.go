// Package sanitize provides best-effort redaction of credentials from text
// that ends up in log files or error messages.
package sanitize

import "regexp"

// Pattern represents a compiled regex pattern for secret detection
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// secretPatterns are applied in order. The JSON patterns match the output of
// "aws configure export-credentials" and "aws sts" calls.
var secretPatterns = []Pattern{
	{
		Name:        "AWS Access Key",
		Regex:       regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`),
		Replacement: "[AWS_ACCESS_KEY_REDACTED]",
	},
	{
		Name:        "AWS Secret Key",
		Regex:       regexp.MustCompile(`(?i)(aws_secret_access_key|secret_access_key)\s*[=:]\s*\S+`),
		Replacement: "${1}=[REDACTED]",
	},
	{
		Name:        "AWS Session Token",
		Regex:       regexp.MustCompile(`(?i)(aws_session_token|session_token)\s*[=:]\s*\S+`),
		Replacement: "${1}=[REDACTED]",
	},
	{
		Name:        "AWS Credentials JSON",
		Regex:       regexp.MustCompile(`"(SecretAccessKey|SessionToken)"\s*:\s*"[^"]*"`),
		Replacement: `"${1}": "[REDACTED]"`,
	},
	{
		Name:        "PEM Block",
		Regex:       regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]+?-----END [A-Z ]+-----`),
		Replacement: "[PEM_REDACTED]",
	},
	{
		Name:        "Generic Secret",
		Regex:       regexp.MustCompile(`(?i)\b(password|passwd|token|secret|api_key)\s*[=:]\s*\S+`),
		Replacement: "${1}=[REDACTED]",
	},
	{
		Name:        "Bearer Token",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_.-]{20,}`),
		Replacement: "Bearer [REDACTED]",
	},
}

// GetSecretPatterns returns a copy of the secret detection patterns list.
func GetSecretPatterns() []Pattern {
	result := make([]Pattern, len(secretPatterns))
	copy(result, secretPatterns)
	return result
}
