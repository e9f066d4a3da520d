// Package main provides the entry point for modi-server.
//
// The server boots the configuration kernel, hands every discovered
// component to the bean registry and then serves:
//
//   - /health and /ready probes
//   - Prometheus metrics
//   - a read-only admin API over the catalog and merged properties
//
// Usage:
//
//	modi-server --home /opt/modi
//	modi-server --config /etc/modi/server.yaml -D serverName=portal.example.org
//
// Property files can be watched; a change is logged as needing a restart.
package main
