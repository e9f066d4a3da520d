// Package service holds the configuration kernel's core logic.
//
//   - Component discovery: ScanComponents and AttachOverrides build the
//     Catalog, which hands bean sources to the host in name order with the
//     override layer last.
//   - Property merging: the Merger loads named sources, flattens them by
//     rank and resolves ${...} placeholders in two passes with the Expander.
//   - PropertiesService is the host-facing accessor over the merge.
//   - CheckPrecondition guards the boot against a missing install root.
//
// Nothing here is safe for concurrent mutation. After the merger is
// finalized every type is read-only.
package service
