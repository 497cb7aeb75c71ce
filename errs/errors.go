// Package errs defines the sentinel errors shared across the ifile packages.
//
// Callers should match these with errors.Is; most errors returned by the
// library wrap one of these sentinels with additional context.
package errs

import "errors"

// Lookup errors. These always surface to the caller.
var (
	// ErrChannelNotFound is returned when a channel name is absent from a
	// channel collection.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrParameterNotFound is returned when a parameter name is absent from
	// the parameter collection.
	ErrParameterNotFound = errors.New("parameter not found")
)

// Offset-correction errors. Either aborts the correction pair that raised it.
var (
	// ErrNotTwoDimensional is returned when a correction input channel's data
	// is not exactly 2-dimensional ([samples, cycles]).
	ErrNotTwoDimensional = errors.New("correction input is not 2-dimensional")

	// ErrCycleCountMismatch is returned when the measured and reference
	// channels disagree on the number of cycles.
	ErrCycleCountMismatch = errors.New("cycle count mismatch")
)

// Snapshot format errors.
var (
	// ErrInvalidMagic is returned when snapshot data does not start with the
	// snapshot magic bits.
	ErrInvalidMagic = errors.New("invalid snapshot magic")

	// ErrInvalidHeaderSize is returned when snapshot data is shorter than a
	// full header.
	ErrInvalidHeaderSize = errors.New("invalid snapshot header size")

	// ErrUnsupportedVersion is returned when a snapshot was written by a
	// newer, unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrDigestMismatch is returned when the snapshot integrity digest does
	// not match the stored trailer.
	ErrDigestMismatch = errors.New("snapshot digest mismatch")

	// ErrCorruptSnapshot is returned when snapshot payload or index data is
	// structurally invalid.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrOpaqueValue is returned when a snapshot encoder encounters an
	// opaque value that cannot be serialized.
	ErrOpaqueValue = errors.New("opaque value cannot be encoded")
)
