// Package format defines the wire-level type codes shared by the snapshot
// encoder and decoder.
package format

type (
	// TagType identifies the kind of an encoded value tree node.
	TagType uint8
	// CompressionType identifies the payload compression codec.
	CompressionType uint8
)

const (
	TagScalar   TagType = 0x1 // TagScalar represents a single float64.
	TagText     TagType = 0x2 // TagText represents a UTF-8 or verbatim byte string.
	TagArray    TagType = 0x3 // TagArray represents an n-dimensional float64 array.
	TagSequence TagType = 0x4 // TagSequence represents an ordered list of values.
	TagRecord   TagType = 0x5 // TagRecord represents an ordered key/value mapping.
	TagInvalid  TagType = 0x6 // TagInvalid represents an absent value.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionXZ   CompressionType = 0x5 // CompressionXZ represents XZ/LZMA2 compression.
)

func (t TagType) String() string {
	switch t {
	case TagScalar:
		return "Scalar"
	case TagText:
		return "Text"
	case TagArray:
		return "Array"
	case TagSequence:
		return "Sequence"
	case TagRecord:
		return "Record"
	case TagInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionXZ:
		return "XZ"
	default:
		return "Unknown"
	}
}
