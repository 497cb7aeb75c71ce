package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/avlkit/ifile/compress"
	"github.com/avlkit/ifile/endian"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/format"
	"github.com/avlkit/ifile/internal/hash"
	"github.com/avlkit/ifile/value"
)

// Decode parses a snapshot blob back into the normalized root record.
//
// The trailer digest is verified before anything else is interpreted, so a
// flipped bit anywhere in the blob surfaces as errs.ErrDigestMismatch, not
// as a garbled record.
//
// Returns:
//   - *value.Record: The decoded root record
//   - *Info: Snapshot provenance and framing
//   - error: errs.ErrInvalidHeaderSize, errs.ErrInvalidMagic,
//     errs.ErrUnsupportedVersion, errs.ErrDigestMismatch or
//     errs.ErrCorruptSnapshot
func Decode(data []byte) (*value.Record, *Info, error) {
	if len(data) < headerSize+digestSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, need at least %d",
			errs.ErrInvalidHeaderSize, len(data), headerSize+digestSize)
	}

	engine, err := detectEngine(data)
	if err != nil {
		return nil, nil, err
	}

	body := data[:len(data)-digestSize]
	digest := blake3.Sum256(body)
	if !bytes.Equal(digest[:], data[len(data)-digestSize:]) {
		return nil, nil, errs.ErrDigestMismatch
	}

	flag := engine.Uint32(data[flagOffset:])
	version := (flag >> versionShift) & versionMask
	if version != Version {
		return nil, nil, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, version)
	}

	compression := format.CompressionType((flag >> compressionShift) & compressionMask)
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrCorruptSnapshot, err)
	}

	entryCount := int(engine.Uint32(data[entryCountOffset:]))
	indexOffset := int(engine.Uint32(data[indexOffOffset:]))
	payloadOffset := int(engine.Uint32(data[payloadOffOffset:]))
	payloadLen := int(engine.Uint32(data[payloadLenOffset:]))

	if indexOffset != headerSize ||
		payloadOffset != indexOffset+entryCount*indexEntrySize ||
		payloadOffset > len(body) {
		return nil, nil, fmt.Errorf("%w: inconsistent section offsets", errs.ErrCorruptSnapshot)
	}

	payload, err := codec.Decompress(body[payloadOffset:], payloadLen)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrCorruptSnapshot, err)
	}
	if len(payload) != payloadLen {
		return nil, nil, fmt.Errorf("%w: payload is %d bytes, header declares %d",
			errs.ErrCorruptSnapshot, len(payload), payloadLen)
	}

	root := value.NewRecord()
	for i := 0; i < entryCount; i++ {
		entry := data[indexOffset+i*indexEntrySize:]
		nameID := engine.Uint64(entry)
		off := int(engine.Uint32(entry[8:]))
		length := int(engine.Uint32(entry[12:]))

		if off < 0 || length < 0 || off+length > len(payload) {
			return nil, nil, fmt.Errorf("%w: index entry %d outside payload", errs.ErrCorruptSnapshot, i)
		}

		r := &valueReader{buf: payload[off : off+length], engine: engine}
		nameLen, err := r.uvarint("entry name length")
		if err != nil {
			return nil, nil, err
		}
		name, err := r.bytes(int(nameLen), "entry name")
		if err != nil {
			return nil, nil, err
		}
		if hash.ID(string(name)) != nameID {
			return nil, nil, fmt.Errorf("%w: index hash does not match entry %q", errs.ErrCorruptSnapshot, name)
		}

		field, err := r.readValue()
		if err != nil {
			return nil, nil, err
		}
		root.Set(string(name), field)
	}

	var id uuid.UUID
	copy(id[:], data[uuidOffset:uuidOffset+16])

	info := &Info{
		ID:          id,
		CreatedAt:   time.UnixMicro(int64(engine.Uint64(data[createdAtOffset:]))),
		Compression: compression,
		BigEndian:   flag&bigEndianBit != 0,
		EntryCount:  entryCount,
	}

	return root, info, nil
}

// detectEngine resolves the snapshot's byte order from the flag word: the
// magic field only matches under the order the snapshot was written with.
func detectEngine(data []byte) (endian.EndianEngine, error) {
	le := endian.GetLittleEndianEngine()
	if le.Uint32(data[flagOffset:])&magicMask == magicValue {
		return le, nil
	}

	be := endian.GetBigEndianEngine()
	if be.Uint32(data[flagOffset:])&magicMask == magicValue {
		return be, nil
	}

	return nil, errs.ErrInvalidMagic
}
