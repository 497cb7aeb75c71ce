// Package compress provides the payload codecs used by container snapshots.
//
// Snapshots store the uncompressed payload length in their header, so the
// Decompressor interface takes that size as a hint and every codec allocates
// its output buffer exactly once. Four real codecs are available (Zstd, S2,
// LZ4, XZ) plus a no-op codec for uncompressed snapshots.
package compress
