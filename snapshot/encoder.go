package snapshot

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/avlkit/ifile/compress"
	"github.com/avlkit/ifile/endian"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/format"
	"github.com/avlkit/ifile/internal/hash"
	"github.com/avlkit/ifile/internal/options"
	"github.com/avlkit/ifile/internal/pool"
	"github.com/avlkit/ifile/value"
)

// EncoderOption configures an Encoder during construction.
type EncoderOption = options.Option[*Encoder]

// WithCompression selects the payload codec. Defaults to Zstd.
func WithCompression(typ format.CompressionType) EncoderOption {
	return options.New(func(e *Encoder) error {
		codec, err := compress.CreateCodec(typ, "snapshot payload")
		if err != nil {
			return err
		}
		e.compression = typ
		e.codec = codec

		return nil
	})
}

// WithLittleEndianEncoding writes multi-byte integers little-endian (the
// default).
func WithLittleEndianEncoding() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndianEncoding writes multi-byte integers big-endian, for exchange
// with big-endian consumers.
func WithBigEndianEncoding() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.engine = endian.GetBigEndianEngine()
	})
}

// Encoder writes container snapshots. An Encoder is immutable after
// construction and safe for concurrent use.
type Encoder struct {
	engine      endian.EndianEngine
	compression format.CompressionType
	codec       compress.Codec
}

// NewEncoder creates a snapshot encoder. Without options it writes
// little-endian, Zstd-compressed snapshots.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionZstd,
		codec:       compress.NewZstdCompressor(),
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Encode serializes the normalized root record into a snapshot blob.
//
// Each top-level entry is encoded into the payload and indexed by the
// xxHash64 of its name. The snapshot gets a fresh provenance UUID and the
// current timestamp.
//
// Returns:
//   - []byte: The snapshot blob
//   - error: errs.ErrOpaqueValue when the tree contains an opaque leaf, or
//     a codec error
func (e *Encoder) Encode(root *value.Record) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root record", errs.ErrCorruptSnapshot)
	}

	return e.encode(root, uuid.New(), time.Now())
}

// encode is the deterministic core of Encode; tests drive it with fixed
// identity and time.
func (e *Encoder) encode(root *value.Record, id uuid.UUID, createdAt time.Time) ([]byte, error) {
	type indexEntry struct {
		nameID uint64
		offset uint32
		length uint32
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	names := root.Keys()
	entries := make([]indexEntry, 0, len(names))

	payload := bb.B
	var err error
	for _, name := range names {
		start := len(payload)

		payload = binary.AppendUvarint(payload, uint64(len(name)))
		payload = append(payload, name...)

		field, _ := root.Get(name)
		payload, err = appendValue(payload, field, e.engine)
		if err != nil {
			bb.B = payload
			return nil, fmt.Errorf("encoding entry %q: %w", name, err)
		}

		entries = append(entries, indexEntry{
			nameID: hash.ID(name),
			offset: uint32(start),
			length: uint32(len(payload) - start),
		})
	}
	bb.B = payload

	compressed, err := e.codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compressing snapshot payload: %w", err)
	}

	indexOffset := uint32(headerSize)
	payloadOffset := indexOffset + uint32(len(entries)*indexEntrySize)

	out := make([]byte, 0, int(payloadOffset)+len(compressed)+digestSize)

	flag := uint32(magicValue) |
		uint32(Version)<<versionShift |
		uint32(e.compression)<<compressionShift
	if e.engine == endian.GetBigEndianEngine() {
		flag |= bigEndianBit
	}

	out = e.engine.AppendUint32(out, flag)
	out = e.engine.AppendUint64(out, uint64(createdAt.UnixMicro()))
	out = e.engine.AppendUint32(out, uint32(len(entries)))
	out = e.engine.AppendUint32(out, indexOffset)
	out = e.engine.AppendUint32(out, payloadOffset)
	out = e.engine.AppendUint32(out, uint32(len(payload)))
	out = append(out, id[:]...)
	out = e.engine.AppendUint32(out, 0) // reserved

	for _, entry := range entries {
		out = e.engine.AppendUint64(out, entry.nameID)
		out = e.engine.AppendUint32(out, entry.offset)
		out = e.engine.AppendUint32(out, entry.length)
	}

	out = append(out, compressed...)

	digest := blake3.Sum256(out)
	out = append(out, digest[:]...)

	return out, nil
}
