// Package confloader reads configuration from disk and the environment.
//
// It is built on koanf and serves two callers:
//
//   - Loader: the server's own YAML configuration (file > env > defaults)
//   - SourceReader: one named property source at a time, kept flat so the
//     kernel can merge sources itself
//
// Supported source formats:
//
//   - .properties files (magiconair/properties, no expansion at read time)
//   - YAML (.yaml, .yml), flattened with "." separators
//
// Locations are filesystem paths read through afero, or "classpath:<name>"
// entries served from an embedded fs.FS.
//
// SystemProperties builds the early-bound property set from MODI_* environment
// variables and explicit key=value definitions.
//
// Watcher reports changes to loaded sources. Nothing is reloaded; the kernel
// only logs that a restart is needed.
package confloader
