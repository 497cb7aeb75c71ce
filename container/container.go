// Package container holds the normalized in-memory representation of one
// loaded measurement file and the lookup collections over it.
//
// A Container wraps the normalized root record produced by the external
// converter. Reserved top-level keys carry structured metadata: "engine"
// (geometry constants), "header" (measurement timestamp), "parameters"
// (derived scalar entries, alias "PAR") and "correction_pairs" (the registry
// of measured-to-reference offset corrections). Every other record entry
// exposing both "data" and "axis" is a measurement channel.
package container

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/avlkit/ifile/axis"
	"github.com/avlkit/ifile/channel"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/internal/options"
	"github.com/avlkit/ifile/ndim"
	"github.com/avlkit/ifile/value"
)

// Reserved top-level keys of the normalized root record.
const (
	KeyEngine          = "engine"
	KeyHeader          = "header"
	KeyParameters      = "parameters"
	KeyParametersAlias = "PAR"
	KeyCorrectionPairs = "correction_pairs"
	KeyTest            = "_test"
)

// Option configures a Container during construction.
type Option = options.Option[*Container]

// WithTestName sets the originating measurement-file identifier reported in
// GENERAL.Test for every channel and parameter view.
func WithTestName(test string) Option {
	return options.NoError(func(c *Container) {
		c.test = test
	})
}

// WithLogger sets the logger used for diagnostic output. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("container logger must not be nil")
		}
		c.logger = logger

		return nil
	})
}

// Container is the normalized root of one measurement file.
//
// It is a single-owner, single-writer structure: the only mutations are the
// explicit data replacement performed by the offset-correction engine and
// the correction-pair registry updates. Views built from it are recomputed
// on every access and hold no state.
type Container struct {
	root   *value.Record
	test   string
	logger *slog.Logger
}

// New normalizes raw converter output into a Container.
//
// raw may be any value graph accepted by value.Normalize; its normal form
// must be a record. Derived parameters are synthesized from the "engine"
// and "header" blocks on construction (see SynthesizeParameters).
//
// Returns:
//   - *Container: The constructed container
//   - error: Option error, or an error when the root does not normalize to
//     a record
func New(raw any, opts ...Option) (*Container, error) {
	root, ok := value.Normalize(raw).Record()
	if !ok {
		return nil, fmt.Errorf("container root must normalize to a record, got %s", value.Normalize(raw).Kind())
	}

	c := &Container{
		root:   root,
		logger: slog.Default(),
	}

	if v, ok := root.Get(KeyTest); ok {
		if s, ok := v.Str(); ok {
			c.test = s
		}
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	// The identifier lives in the root record so it survives snapshots.
	if c.test != "" {
		root.Set(KeyTest, value.Text(c.test))
	}

	c.SynthesizeParameters()

	return c, nil
}

// Root returns the normalized root record.
func (c *Container) Root() *value.Record {
	return c.root
}

// Test returns the originating measurement-file identifier, "" when unset.
func (c *Container) Test() string {
	return c.test
}

// Logger returns the container's diagnostic logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Engine returns the "engine" metadata record and whether it exists.
func (c *Container) Engine() (*value.Record, bool) {
	return c.recordAt(KeyEngine)
}

// Header returns the "header" metadata record and whether it exists.
func (c *Container) Header() (*value.Record, bool) {
	return c.recordAt(KeyHeader)
}

// Channels returns the lookup collection over channels whose axis
// classification equals kind.
func (c *Container) Channels(kind axis.Kind) *ChannelCollection {
	return &ChannelCollection{container: c, kind: kind}
}

// CA returns the crank-angle channel collection.
func (c *Container) CA() *ChannelCollection {
	return c.Channels(axis.KindCrankAngle)
}

// CY returns the cycle channel collection.
func (c *Container) CY() *ChannelCollection {
	return c.Channels(axis.KindCycle)
}

// Parameters returns the lookup collection over the "parameters" record.
func (c *Container) Parameters() *ParameterCollection {
	return &ParameterCollection{container: c}
}

// Block decodes the named channel entry into a RawBlock.
//
// Returns:
//   - *channel.RawBlock: The decoded block
//   - error: errs.ErrChannelNotFound when the name is absent or the entry is
//     not a channel record
func (c *Container) Block(name string) (*channel.RawBlock, error) {
	rec, ok := c.blockRecord(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrChannelNotFound, name)
	}

	return channel.BlockFromRecord(rec), nil
}

// SetBlockData replaces the named channel's data array in place. The axis
// and metadata are untouched.
//
// Returns:
//   - error: errs.ErrChannelNotFound when the name is absent or the entry is
//     not a channel record
func (c *Container) SetBlockData(name string, data *ndim.Array) error {
	rec, ok := c.blockRecord(name)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrChannelNotFound, name)
	}

	rec.Set("data", value.Array(data))

	return nil
}

// blockRecord returns the named root entry when it is a channel record,
// i.e. a record exposing both "data" and "axis".
func (c *Container) blockRecord(name string) (*value.Record, bool) {
	rec, ok := c.recordAt(name)
	if !ok || !isBlockRecord(rec) {
		return nil, false
	}

	return rec, true
}

func (c *Container) recordAt(key string) (*value.Record, bool) {
	v, ok := c.root.Get(key)
	if !ok {
		return nil, false
	}

	return v.Record()
}

func isBlockRecord(rec *value.Record) bool {
	return rec.Has("data") && rec.Has("axis")
}

// engineParams maps "engine" block fields to the parameters synthesized
// from them.
var engineParams = []struct {
	field string
	param string
	desc  string
}{
	{"name", "ENGINE", "engine name"},
	{"bore", "BORE", "bore diameter"},
	{"stroke", "STROKE", "stroke length"},
	{"conrod_length", "CONROD", "conrod length"},
	{"compression_ratio", "EPSILON", "compression"},
	{"number_of_strokes", "NRSTROKE", "number of strokes"},
	{"pin_offset", "PINOFF", "pinoff"},
}

// SynthesizeParameters populates the "parameters" record with entries
// derived from the "engine" and "header" blocks.
//
// Engine geometry fields become ENGINE, BORE, STROKE, CONROD, EPSILON,
// NRSTROKE and PINOFF; absent fields are skipped. When the header carries a
// "date" string of at least 14 digits (YYYYMMDDHHMMSS), DATE holds the raw
// digit string and TIMESTAMP an ISO-8601 "YYYY-MM-DD HH:MM:SS" rendering.
//
// New runs this once on construction; it is idempotent and safe to re-run
// after mutating the engine or header blocks.
func (c *Container) SynthesizeParameters() {
	params := c.ensureParameters()

	if eng, ok := c.Engine(); ok {
		for _, ep := range engineParams {
			v, ok := eng.Get(ep.field)
			if !ok || !v.IsValid() {
				continue
			}
			params.Set(ep.param, paramEntry("value", v, ep.desc))
		}
	}

	hdr, ok := c.Header()
	if !ok {
		return
	}
	v, ok := hdr.Get("date")
	if !ok {
		return
	}
	date, ok := v.Str()
	if !ok || len(date) < 14 {
		return
	}

	iso := fmt.Sprintf("%s-%s-%s %s:%s:%s",
		date[0:4], date[4:6], date[6:8],
		date[8:10], date[10:12], date[12:14])

	params.Set("DATE", paramEntry("value", value.Text(date), "date of measurement"))
	params.Set("TIMESTAMP", paramEntry("values", value.Sequence(value.Text(iso)), "time stamp"))
}

// ensureParameters returns the "parameters" record (or its "PAR" alias),
// creating an empty one under the canonical key when neither exists.
func (c *Container) ensureParameters() *value.Record {
	if rec, ok := c.recordAt(KeyParameters); ok {
		return rec
	}
	if rec, ok := c.recordAt(KeyParametersAlias); ok {
		return rec
	}

	rec := value.NewRecord()
	c.root.Set(KeyParameters, value.Rec(rec))

	return rec
}

func paramEntry(valueKey string, v value.Value, desc string) value.Value {
	rec := value.NewRecord()
	rec.Set(valueKey, v)
	rec.Set("unit", value.Text(""))
	rec.Set("description", value.Text(desc))

	return value.Rec(rec)
}

// Pair is one registered offset correction: the measured channel aligned to
// its reference channel.
type Pair struct {
	Measured  string
	Reference string
}

// CorrectionPairs returns the registered correction pairs in registration
// order.
func (c *Container) CorrectionPairs() []Pair {
	rec, ok := c.recordAt(KeyCorrectionPairs)
	if !ok {
		return nil
	}

	pairs := make([]Pair, 0, rec.Len())
	for _, measured := range rec.Keys() {
		v, _ := rec.Get(measured)
		ref, ok := v.Str()
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Measured: measured, Reference: ref})
	}

	return pairs
}

// SetCorrectionPairs replaces the correction-pair registry.
func (c *Container) SetCorrectionPairs(pairs []Pair) {
	rec := value.NewRecord()
	for _, p := range pairs {
		rec.Set(p.Measured, value.Text(p.Reference))
	}
	c.root.Set(KeyCorrectionPairs, value.Rec(rec))
}

// RegisterCorrectionPair adds one pair to the registry, replacing any
// earlier reference for the same measured channel.
func (c *Container) RegisterCorrectionPair(measured, reference string) {
	rec, ok := c.recordAt(KeyCorrectionPairs)
	if !ok {
		rec = value.NewRecord()
		c.root.Set(KeyCorrectionPairs, value.Rec(rec))
	}

	rec.Set(measured, value.Text(reference))
}

// DiscoverReferencePairs scans the crank-angle channels for the standard
// reference layout and records the result as the correction-pair registry.
//
// When an SDREF channel exists, every channel ending in "SAUG" pairs with
// it; when an ADREF channel exists, every channel ending in "AUSP" pairs
// with it. The returned pairs follow container insertion order.
func (c *Container) DiscoverReferencePairs() []Pair {
	names := c.CA().Names()
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	var pairs []Pair
	if _, ok := present["SDREF"]; ok {
		for _, n := range names {
			if strings.HasSuffix(n, "SAUG") {
				pairs = append(pairs, Pair{Measured: n, Reference: "SDREF"})
			}
		}
	}
	if _, ok := present["ADREF"]; ok {
		for _, n := range names {
			if strings.HasSuffix(n, "AUSP") {
				pairs = append(pairs, Pair{Measured: n, Reference: "ADREF"})
			}
		}
	}

	c.SetCorrectionPairs(pairs)

	return pairs
}
