// Package config provides the modi-cli profile.
//
// A profile (~/.modi/cli.yaml) holds defaults for the global flags so an
// operator does not have to repeat --home or -D on every call:
//
//	home: /opt/modi
//	output: yaml
//	defines:
//	  - serverName=portal.example.org
//
// Flags always win over the profile.
package config
