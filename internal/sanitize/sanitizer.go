package sanitize

import "log/slog"

// Sanitizer replaces secrets in text with placeholders.
type Sanitizer struct {
	patterns []Pattern
}

// NewSanitizer creates a new Sanitizer with default patterns
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: GetSecretPatterns(),
	}
}

// NewSanitizerWithPatterns creates a Sanitizer with custom patterns
func NewSanitizerWithPatterns(patterns []Pattern) *Sanitizer {
	return &Sanitizer{
		patterns: patterns,
	}
}

// Sanitize returns input with every pattern match replaced.
func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range s.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// Attr returns a with its string value sanitized. It fits
// slog.HandlerOptions.ReplaceAttr.
func (s *Sanitizer) Attr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(s.Sanitize(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case error:
			a.Value = slog.StringValue(s.Sanitize(v.Error()))
		case []string:
			out := make([]string, len(v))
			for i, str := range v {
				out[i] = s.Sanitize(str)
			}
			a.Value = slog.AnyValue(out)
		}
	}
	return a
}

// DefaultSanitizer is a package-level sanitizer for convenience
var DefaultSanitizer = NewSanitizer()

// Sanitize uses the default sanitizer to sanitize input
func Sanitize(input string) string {
	return DefaultSanitizer.Sanitize(input)
}
