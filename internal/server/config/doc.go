// Package config provides the configuration of modi-server itself.
//
// This is not the merged component configuration; it is how the server
// finds it:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (source declarations, addresses, log settings)
//   - sanitize.go: Masking of secret property values for display and logs
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: a YAML file, MODI_CONF_ environment variables and
// flags.
package config
