// Package channel builds per-channel and per-parameter views over raw
// measurement blocks.
//
// A channel is one named block of the normalized container: an n-dimensional
// data array, an independent-variable axis, and metadata. Views are pure
// read-through products rebuilt on every access; they hold no state beyond
// the block reference and never cache.
package channel

import (
	"strconv"

	"github.com/avlkit/ifile/axis"
	"github.com/avlkit/ifile/ndim"
	"github.com/avlkit/ifile/value"
)

// componentNameKeys are the block fields that may declare per-component
// names for multi-component channels, in lookup order.
var componentNameKeys = []string{"channel_names", "channels", "names", "components", "subchannels"}

// RawBlock is one measured channel's raw payload as stored in the container:
// the data array, its independent-variable axis, and descriptive metadata.
type RawBlock struct {
	// Data is the n-dimensional sample payload. Never nil; empty when the
	// block carried no data.
	Data *ndim.Array
	// Axis is the independent-variable sample sequence.
	Axis []float64
	// Units is the measurement unit string ("-" when the block declares none).
	Units string
	// Description is the block's free-text description.
	Description string
	// Components holds declared per-component names for multi-component
	// blocks, nil when none are declared.
	Components []string
}

// BlockFromRecord decodes a normalized block record into a RawBlock.
//
// Missing or mistyped fields degrade to defaults rather than failing: data
// defaults to an empty array, axis to nil, units to "-", description to "".
func BlockFromRecord(rec *value.Record) *RawBlock {
	b := &RawBlock{
		Data:  ndim.Empty(),
		Units: "-",
	}
	if rec == nil {
		return b
	}

	if v, ok := rec.Get("data"); ok {
		b.Data = asArray(v)
	}
	if v, ok := rec.Get("axis"); ok {
		b.Axis = asFloats(v)
	}
	if v, ok := rec.Get("units"); ok {
		if s, ok := asString(v); ok {
			b.Units = s
		}
	}
	if v, ok := rec.Get("description"); ok {
		if s, ok := asString(v); ok {
			b.Description = s
		}
	}

	for _, key := range componentNameKeys {
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		if names := asStrings(v); names != nil {
			b.Components = names
			break
		}
	}

	return b
}

// HasAxis reports whether the block carries a non-empty axis.
func (b *RawBlock) HasAxis() bool {
	return len(b.Axis) > 0
}

// AxisKind classifies the block's axis.
func (b *RawBlock) AxisKind() axis.Kind {
	return axis.Classify(b.Axis)
}

// asArray converts a normalized value to an n-dimensional array, degrading
// to an empty array for shapes it cannot interpret.
func asArray(v value.Value) *ndim.Array {
	switch v.Kind() {
	case value.KindArray:
		arr, _ := v.Arr()
		return arr
	case value.KindScalar:
		f, _ := v.Float()
		return ndim.Scalar(f)
	case value.KindSequence:
		seq, _ := v.Seq()
		out := make([]float64, 0, len(seq))
		for _, e := range seq {
			f, ok := e.Float()
			if !ok {
				return ndim.Empty()
			}
			out = append(out, f)
		}

		return ndim.FromSlice(out)
	default:
		return ndim.Empty()
	}
}

// asFloats converts a normalized value to a flat sample sequence.
func asFloats(v value.Value) []float64 {
	return asArray(v).Flatten()
}

// asString extracts a string from text or numeric values.
func asString(v value.Value) (string, bool) {
	if s, ok := v.Str(); ok {
		return s, true
	}
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}

	return "", false
}

// asStrings extracts a name list from a sequence value, nil when the value
// is not a sequence of convertible elements.
func asStrings(v value.Value) []string {
	seq, ok := v.Seq()
	if !ok {
		return nil
	}

	out := make([]string, 0, len(seq))
	for _, e := range seq {
		s, ok := asString(e)
		if !ok {
			return nil
		}
		out = append(out, s)
	}

	return out
}
