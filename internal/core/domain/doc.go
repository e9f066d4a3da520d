// Package domain defines the core domain models for the modi kernel.
//
// Domain models are plain values without IO dependencies:
//
//   - ComponentUnit: one discovered component directory
//   - Overrides: the optional override layer (NoOverrides or *OverrideLayer)
//   - SourceSpec, PropertySource: declared and loaded property sources
//   - MergedConfiguration: the flattened, resolved result of a merge
//   - Errors: coded domain errors
//
// Everything here is immutable once constructed; accessors hand out copies.
package domain
