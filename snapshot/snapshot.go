// Package snapshot persists a normalized container as a compact binary blob.
//
// A snapshot carries the raw normalized value tree only, never derived
// views; decoding yields a record from which channel and parameter views
// are rebuilt as usual. The layout is:
//
//	header (48 bytes) | index (16 bytes per entry) | payload | digest (32 bytes)
//
// The header records byte order, format version, compression codec, entry
// count, section offsets, the uncompressed payload length, a creation
// timestamp and a provenance UUID. The index maps the xxHash64 of each
// top-level entry name to that entry's offset and length within the
// uncompressed payload; entry names themselves travel in the payload. The
// payload is the tag-encoded value tree of every entry, compressed as a
// whole. The trailer is a BLAKE3-256 digest over everything before it,
// verified on decode.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/avlkit/ifile/format"
)

const (
	headerSize     = 48
	indexEntrySize = 16
	digestSize     = 32

	// Byte offsets within the header.
	flagOffset       = 0
	createdAtOffset  = 4
	entryCountOffset = 12
	indexOffOffset   = 16
	payloadOffOffset = 20
	payloadLenOffset = 24
	uuidOffset       = 28
	reservedOffset   = 44

	// Flag word layout: magic in the low 16 bits, endianness bit 16,
	// version in bits 24..27, compression type in bits 28..31.
	magicValue       = 0x49F1
	magicMask        = 0xFFFF
	bigEndianBit     = 1 << 16
	versionShift     = 24
	versionMask      = 0xF
	compressionShift = 28
	compressionMask  = 0xF

	// Version is the snapshot format version this package reads and writes.
	Version = 1
)

// Info describes a decoded snapshot's provenance and framing.
type Info struct {
	// ID is the snapshot's provenance UUID, assigned at encode time.
	ID uuid.UUID
	// CreatedAt is the encode timestamp, microsecond precision.
	CreatedAt time.Time
	// Compression is the payload codec the snapshot was written with.
	Compression format.CompressionType
	// BigEndian reports the snapshot's multi-byte integer order.
	BigEndian bool
	// EntryCount is the number of top-level container entries.
	EntryCount int
}
