// Package httpserver provides the admin HTTP listener of modi-server.
//
// Routes:
//
//   - /health, /ready: liveness and readiness
//   - metrics path (default /metrics): Prometheus exposition
//   - /admin/v1/*: read-only view of the catalog and merged configuration
//
// Every route runs behind RequestID and Recover. Admin routes add the
// optional network ACL, a per-client rate limit and access logging.
package httpserver
