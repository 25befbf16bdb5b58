// Package preset defines genre mastering presets and the read-only catalog
// they are looked up from.
//
// A Catalog is built once (from the embedded default table, a TOML/YAML
// file, or a literal slice) and validated at construction time. After that
// it is never mutated and may be shared by any number of concurrent jobs.
// Lookups are case-insensitive and return copies, so callers can never
// modify catalog contents.
package preset
