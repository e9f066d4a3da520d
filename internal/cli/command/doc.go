// Package command provides CLI command definitions for modi-cli.
//
// Every command boots the kernel read-only from the flags and prints what
// it found:
//
//   - check: boot and report problems
//   - components: list discovered components and overrides
//   - config: show merged, raw and per-source properties
//   - profile: show or save defaults for the global flags
//   - version: build information
package command
