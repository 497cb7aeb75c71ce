// Package hash derives fixed-size identifiers from container entry names.
//
// Snapshot index entries store the xxHash64 of the entry name instead of the
// name itself, keeping the index fixed-size; the names travel in the payload
// for reconstruction.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given entry name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}
