// Package main provides the entry point for modi-cli.
//
// modi-cli boots the configuration kernel against an install root without
// starting anything, and prints what it found:
//
//	modi-cli --home /opt/modi check --strict
//	modi-cli --home /opt/modi components list
//	modi-cli --home /opt/modi -o json config show --source install
//	modi-cli --home /opt/modi config resolve '${portal.url}'
package main
