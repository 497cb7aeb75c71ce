// Package endian provides byte order utilities for snapshot encoding and
// decoding.
//
// It combines the ByteOrder and AppendByteOrder interfaces of Go's standard
// encoding/binary package into a single EndianEngine interface, which the
// snapshot encoder uses for append-style header and index writes:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, entryCount)
//
// Snapshots are written little-endian by default; the header flag word
// records which order was used, so decoders pick the matching engine. The
// returned engines are immutable, stateless, and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte order operations.
//
// The interface is satisfied by binary.LittleEndian and binary.BigEndian
// from the standard library, so engines interoperate with existing code
// while providing both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
