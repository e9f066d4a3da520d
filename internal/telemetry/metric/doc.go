// Package metric exposes boot metrics of the configuration kernel in
// Prometheus format.
//
//   - prometheus.go: the Registry of kernel counters and gauges, and the
//     HTTP handler serving it
//   - collector.go: a custom collector reporting the live merged
//     configuration (key count, source count, unresolved placeholders)
//
// A nil *Registry is valid and records nothing, so services can take one
// optionally.
package metric
