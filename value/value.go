// Package value models converter output as a closed tagged variant.
//
// The external converter hands over an opaque graph of structured records,
// object arrays, byte strings and scalars. This package pins that graph down
// to a closed set of shapes so downstream views never need dynamic type
// inspection:
//
//	Value = Scalar | Text | Array | Sequence | Record
//
// plus an Opaque escape for converter-native leaves that cannot be
// converted; the normalizer carries those through unchanged instead of
// failing. See Normalize for the conversion rules.
package value

import (
	"slices"

	"github.com/avlkit/ifile/ndim"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindInvalid is the zero Value; it represents an absent entry.
	KindInvalid Kind = iota
	// KindScalar is a single numeric value.
	KindScalar
	// KindText is a string value. Text preserves its bytes verbatim and is
	// not required to be valid UTF-8.
	KindText
	// KindArray is an n-dimensional numeric array.
	KindArray
	// KindSequence is an ordered list of values.
	KindSequence
	// KindRecord is an ordered name-to-value mapping.
	KindRecord
	// KindOpaque carries an unconvertible converter-native leaf unchanged.
	KindOpaque
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindScalar:
		return "Scalar"
	case KindText:
		return "Text"
	case KindArray:
		return "Array"
	case KindSequence:
		return "Sequence"
	case KindRecord:
		return "Record"
	case KindOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Value is one node of a normalized container tree.
//
// The zero Value is invalid (an absent entry). Values are cheap to copy;
// array, sequence and record contents are shared, not duplicated.
type Value struct {
	kind Kind
	num  float64
	str  string
	arr  *ndim.Array
	seq  []Value
	rec  *Record
	raw  any
}

// Scalar creates a numeric value.
func Scalar(v float64) Value {
	return Value{kind: KindScalar, num: v}
}

// Text creates a string value.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Array creates an n-dimensional numeric array value.
func Array(a *ndim.Array) Value {
	return Value{kind: KindArray, arr: a}
}

// Sequence creates an ordered list value.
func Sequence(elems ...Value) Value {
	return Value{kind: KindSequence, seq: elems}
}

// Rec creates a record value.
func Rec(r *Record) Value {
	return Value{kind: KindRecord, rec: r}
}

// Opaque wraps an unconvertible leaf.
func Opaque(v any) Value {
	return Value{kind: KindOpaque, raw: v}
}

// Kind returns the variant held by this value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether the value holds any variant.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// Float returns the numeric value and whether the value is a scalar.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindScalar
}

// Str returns the string value and whether the value is text.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindText
}

// Arr returns the array and whether the value is a numeric array.
func (v Value) Arr() (*ndim.Array, bool) {
	return v.arr, v.kind == KindArray
}

// Seq returns the element list and whether the value is a sequence.
func (v Value) Seq() ([]Value, bool) {
	return v.seq, v.kind == KindSequence
}

// Record returns the record and whether the value is a record.
func (v Value) Record() (*Record, bool) {
	return v.rec, v.kind == KindRecord
}

// Raw returns the wrapped leaf for opaque values, nil otherwise.
func (v Value) Raw() any {
	if v.kind != KindOpaque {
		return nil
	}

	return v.raw
}

// Record is an ordered name-to-value mapping.
//
// Iteration order is insertion order; Set on an existing key replaces the
// value in place without moving it.
type Record struct {
	keys   []string
	fields map[string]Value
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Set inserts or replaces the value for key.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value for key and whether it exists.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key exists.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Delete removes key if present, preserving the order of remaining keys.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.keys)
}
