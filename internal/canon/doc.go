// Package canon provides canonical JSON encoding and content-addressed hashes.
//
// Golden traces and archived run configurations are serialized with
// MarshalCanonical so that identical inputs always produce identical bytes:
//   - object keys sorted by UTF-16 code units (RFC 8785)
//   - no insignificant whitespace, no HTML escaping
//   - strings NFC normalized
//   - no floats and no null (durations are carried as integer microseconds)
//
// Hashes use SHA-256 with a versioned domain prefix.
package canon
