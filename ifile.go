// Package ifile interprets normalized indicator-measurement data from an
// internal-combustion-engine test bench.
//
// An external converter turns proprietary measurement files into a generic
// container: named multi-dimensional numeric blocks plus scalar metadata.
// This package takes that opaque container and exposes a domain-correct
// view of the indicator record:
//
//   - Axis classification: every channel's independent-variable axis is
//     classified as crank-angle-resolved ("CA") or cycle-resolved ("CY").
//   - Shape-aware flattening: arbitrarily-shaped data arrays are reshaped
//     into flat per-sample sequences with a matching axis column, whichever
//     dimension the sample axis sits in.
//   - Uniform metadata: every channel and parameter exposes the same
//     GENERAL record and tabular VALUES mapping.
//   - Offset correction: measured channels are aligned to reference
//     channels cycle by cycle via interpolated mean-difference offsets.
//
// # Basic Usage
//
// Loading converter output and reading a channel:
//
//	import "github.com/avlkit/ifile"
//
//	f, err := ifile.New(raw, ifile.WithTestName("run42.i00"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	view, err := f.CA().Get("PCYL1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	general := view.General() // Channel, Units, Base, RecordCount, Range, ...
//	values := view.Values()   // "CA" axis column + data columns
//
// By default, New discovers the standard reference channels (SDREF for
// intake-side channels, ADREF for exhaust-side channels), records the pairs
// in the container's correction registry, and applies the offset
// correction. Use WithOffsetCorrection(false) to load the data untouched.
//
// # Snapshots
//
// A container can be persisted as a compact binary snapshot and restored
// later; the snapshot carries the raw normalized data, never derived views:
//
//	blob, err := ifile.EncodeSnapshot(f)
//	...
//	restored, info, err := ifile.DecodeSnapshot(blob)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. For fine-grained
// control, use the container, correction and snapshot packages directly.
package ifile

import (
	"fmt"
	"log/slog"

	"github.com/avlkit/ifile/container"
	"github.com/avlkit/ifile/correction"
	"github.com/avlkit/ifile/internal/hash"
	"github.com/avlkit/ifile/internal/options"
	"github.com/avlkit/ifile/snapshot"
	"github.com/avlkit/ifile/value"
)

// loadConfig collects the root-level construction options before they fan
// out to the container and correction engine.
type loadConfig struct {
	test             string
	logger           *slog.Logger
	offsetCorrection bool
}

// Option configures New.
type Option = options.Option[*loadConfig]

// WithTestName sets the originating measurement-file identifier reported in
// GENERAL.Test for every channel and parameter view.
func WithTestName(test string) Option {
	return options.NoError(func(cfg *loadConfig) {
		cfg.test = test
	})
}

// WithLogger sets the logger used by the container and the correction
// engine. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(cfg *loadConfig) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		cfg.logger = logger

		return nil
	})
}

// WithOffsetCorrection enables or disables the automatic reference-channel
// discovery and offset correction performed by New. Enabled by default.
func WithOffsetCorrection(enabled bool) Option {
	return options.NoError(func(cfg *loadConfig) {
		cfg.offsetCorrection = enabled
	})
}

// New normalizes raw converter output into a Container and, unless disabled,
// discovers the standard reference-channel pairs and applies the offset
// correction to them.
//
// Parameters:
//   - raw: Converter output; any value graph whose normal form is a record
//   - opts: Optional configuration (WithTestName, WithLogger,
//     WithOffsetCorrection)
//
// Returns:
//   - *container.Container: The loaded container
//   - error: Normalization, option or correction error
func New(raw any, opts ...Option) (*container.Container, error) {
	cfg := &loadConfig{
		logger:           slog.Default(),
		offsetCorrection: true,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	copts := []container.Option{container.WithLogger(cfg.logger)}
	if cfg.test != "" {
		copts = append(copts, container.WithTestName(cfg.test))
	}

	c, err := container.New(raw, copts...)
	if err != nil {
		return nil, err
	}

	if cfg.offsetCorrection {
		c.DiscoverReferencePairs()

		engine, err := correction.NewEngine(correction.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
		if err := engine.Apply(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// EncodeSnapshot serializes the container's normalized data as a snapshot
// blob. Correction pairs already applied travel with it; derived views do
// not.
//
// Available options:
//   - snapshot.WithCompression(format.CompressionNone|Zstd|S2|LZ4|XZ)
//   - snapshot.WithLittleEndianEncoding() / snapshot.WithBigEndianEncoding()
func EncodeSnapshot(c *container.Container, opts ...snapshot.EncoderOption) ([]byte, error) {
	enc, err := snapshot.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(c.Root())
}

// DecodeSnapshot restores a container from a snapshot blob.
//
// The restored container keeps its correction-pair registry but the
// correction is not re-applied by default, since the snapshot already holds
// corrected data. WithOffsetCorrection(true) re-runs the registered pairs,
// which computes a residual near-zero offset.
//
// Returns:
//   - *container.Container: The restored container
//   - *snapshot.Info: Snapshot provenance (UUID, timestamp, codec)
//   - error: Snapshot format, integrity or option error
func DecodeSnapshot(data []byte, opts ...Option) (*container.Container, *snapshot.Info, error) {
	root, info, err := snapshot.Decode(data)
	if err != nil {
		return nil, nil, err
	}

	cfg := &loadConfig{logger: slog.Default()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, nil, err
	}

	copts := []container.Option{container.WithLogger(cfg.logger)}
	if cfg.test != "" {
		copts = append(copts, container.WithTestName(cfg.test))
	}

	c, err := container.New(value.Rec(root), copts...)
	if err != nil {
		return nil, nil, err
	}

	if cfg.offsetCorrection {
		engine, err := correction.NewEngine(correction.WithLogger(cfg.logger))
		if err != nil {
			return nil, nil, err
		}
		if err := engine.Apply(c); err != nil {
			return nil, nil, err
		}
	}

	return c, info, nil
}

// EntryID converts a container entry name to the 64-bit hash identifier
// used in snapshot indexes.
func EntryID(name string) uint64 {
	return hash.ID(name)
}
