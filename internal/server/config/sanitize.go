package config

import (
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// SanitizeProperties returns a copy of props safe to print or log: values
// of keys that name a secret are masked.
func SanitizeProperties(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		if logger.IsSensitiveKey(k) {
			v = logger.RedactString(v)
		}
		out[k] = v
	}
	return out
}
