package logger

import (
	"log/slog"
	"strings"
)

// Key segments that mark a value as secret. Keys are split on '.', '_' and
// '-' and compared segment by segment, so "db.password" and "API_TOKEN"
// match while "keys" and "tokenizer.mode" do not.
var sensitiveSegments = map[string]bool{
	"password":    true,
	"passwd":      true,
	"pwd":         true,
	"secret":      true,
	"token":       true,
	"credential":  true,
	"credentials": true,
	"bearer":      true,
	"apikey":      true,
	"passphrase":  true,
}

// Adjacent segment pairs that mark a value as secret. "key" alone is too
// common in property names to count.
var sensitivePairs = map[[2]string]bool{
	{"private", "key"}:    true,
	{"secret", "key"}:     true,
	{"api", "key"}:        true,
	{"access", "key"}:     true,
	{"encryption", "key"}: true,
	{"signing", "key"}:    true,
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive replaces non-empty string attributes whose key looks
// sensitive.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		return a
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// RedactString masks a secret value, keeping two characters at each end
// of longer values as a hint.
func RedactString(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	segments := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, seg := range segments {
		if sensitiveSegments[seg] {
			return true
		}
		if i > 0 && sensitivePairs[[2]string{segments[i-1], seg}] {
			return true
		}
	}
	return false
}
