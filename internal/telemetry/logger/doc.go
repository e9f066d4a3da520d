// Package logger provides structured logging for the configuration kernel.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, JSON and text handlers, dynamic level
//   - context.go: boot ID and component propagation through context
//   - redact.go: redaction of attributes whose keys name secrets
//
// Property values are logged often during boot; any attribute whose key
// looks like a password, secret or token is replaced before it is written.
package logger
