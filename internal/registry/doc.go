// Package registry loads the two identity registries into memory.
//
// The secondary (Rosetta) registry is loaded first. Loading it yields the
// ordered records, the verbatim header and the set of canonical identifiers
// already claimed by some secondary record. The canonical (Master) registry
// is loaded second and skips every claimed identifier, so an identity that
// is already linked can never be offered to a second secondary record.
//
// Both loaders validate row width against the configured Schema and fail
// fast with a line-annotated *SchemaError.
package registry
