package value

import (
	"sort"

	"github.com/avlkit/ifile/ndim"
)

// Option configures a Normalize call.
type Option func(*config)

type config struct {
	expandArrays bool
}

// ExpandArrays converts multi-element numeric arrays into nested sequences
// of scalars instead of keeping them as Array values. Single-element arrays
// unwrap to scalars either way.
func ExpandArrays() Option {
	return func(c *config) {
		c.expandArrays = true
	}
}

// Normalize recursively converts a converter-native value graph into the
// closed Value variant.
//
// The rules, applied in order:
//  1. Structured record (map[string]any, *Record): record with each field
//     normalized. Go maps carry no order, so map keys are sorted; Record
//     input keeps its insertion order.
//  2. Sequence ([]any, []Value, []string): element-wise normalize, order
//     preserved.
//  3. Object-typed arrays have no Go counterpart; heterogeneous input
//     arrives as []any and is handled by rule 2.
//  4. Numeric array with a single element: unwrapped to a scalar.
//  5. Numeric array with multiple elements: kept as an Array, unless
//     ExpandArrays is set, in which case it becomes nested sequences of
//     scalars along its dimensions.
//  6. Byte sequence: carried as Text with its bytes verbatim. Go strings
//     hold arbitrary bytes, so undecodable input passes through unchanged.
//
// Plain numbers become scalars, strings become text, nil becomes the
// invalid Value. Anything else is wrapped as an Opaque leaf rather than
// rejected: normalization is total over arbitrary converter output and has
// no side effects.
//
// Normalizing an already-normalized tree returns an identical tree.
func Normalize(v any, opts ...Option) Value {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return normalize(v, &cfg)
}

func normalize(v any, cfg *config) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return normalizeValue(x, cfg)
	case *Record:
		return Rec(normalizeRecord(x, cfg))
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rec := NewRecord()
		for _, k := range keys {
			rec.Set(k, normalize(x[k], cfg))
		}

		return Rec(rec)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = normalize(e, cfg)
		}

		return Sequence(elems...)
	case []Value:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = normalizeValue(e, cfg)
		}

		return Sequence(elems...)
	case []string:
		elems := make([]Value, len(x))
		for i, s := range x {
			elems[i] = Text(s)
		}

		return Sequence(elems...)
	case []byte:
		return Text(string(x))
	case string:
		return Text(x)
	case *ndim.Array:
		return normalizeArray(x, cfg)
	case []float64:
		return normalizeArray(ndim.FromSlice(x), cfg)
	case []float32:
		return normalizeArray(ndim.FromSlice(toFloat64s(x)), cfg)
	case []int:
		return normalizeArray(ndim.FromSlice(toFloat64s(x)), cfg)
	case []int32:
		return normalizeArray(ndim.FromSlice(toFloat64s(x)), cfg)
	case []int64:
		return normalizeArray(ndim.FromSlice(toFloat64s(x)), cfg)
	case [][]float64:
		return normalizeMatrix(x, cfg)
	case float64:
		return Scalar(x)
	case float32:
		return Scalar(float64(x))
	case int:
		return Scalar(float64(x))
	case int8:
		return Scalar(float64(x))
	case int16:
		return Scalar(float64(x))
	case int32:
		return Scalar(float64(x))
	case int64:
		return Scalar(float64(x))
	case uint:
		return Scalar(float64(x))
	case uint8:
		return Scalar(float64(x))
	case uint16:
		return Scalar(float64(x))
	case uint32:
		return Scalar(float64(x))
	case uint64:
		return Scalar(float64(x))
	case bool:
		if x {
			return Scalar(1)
		}

		return Scalar(0)
	default:
		return Opaque(v)
	}
}

// normalizeValue re-applies the rules to an already-typed value. Scalars,
// text and opaque leaves are fixed points; containers recurse so that
// un-normalized payloads smuggled inside a Value still come out normalized.
func normalizeValue(v Value, cfg *config) Value {
	switch v.kind {
	case KindRecord:
		return Rec(normalizeRecord(v.rec, cfg))
	case KindSequence:
		elems := make([]Value, len(v.seq))
		for i, e := range v.seq {
			elems[i] = normalizeValue(e, cfg)
		}

		return Sequence(elems...)
	case KindArray:
		return normalizeArray(v.arr, cfg)
	default:
		return v
	}
}

func normalizeRecord(r *Record, cfg *config) *Record {
	out := NewRecord()
	for _, k := range r.keys {
		out.Set(k, normalizeValue(r.fields[k], cfg))
	}

	return out
}

func normalizeArray(a *ndim.Array, cfg *config) Value {
	if a == nil {
		return Value{}
	}
	if a.Size() == 1 {
		return Scalar(a.Data()[0])
	}
	if cfg.expandArrays {
		return expandArray(a)
	}

	return Array(a)
}

// expandArray converts an array to nested sequences of scalars along its
// dimensions.
func expandArray(a *ndim.Array) Value {
	if a.NDim() == 0 {
		return Scalar(a.Data()[0])
	}
	if a.NDim() == 1 {
		elems := make([]Value, a.Size())
		for i, f := range a.Data() {
			elems[i] = Scalar(f)
		}

		return Sequence(elems...)
	}

	shape := a.Shape()
	sub := shape[1:]
	subSize := 1
	for _, d := range sub {
		subSize *= d
	}

	elems := make([]Value, shape[0])
	data := a.Data()
	for i := range elems {
		block, err := ndim.New(sub, data[i*subSize:(i+1)*subSize])
		if err != nil {
			// Shapes derived from a valid array always describe the block.
			return Array(a)
		}
		elems[i] = expandArray(block)
	}

	return Sequence(elems...)
}

func toFloat64s[T float32 | int | int32 | int64](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}

func normalizeMatrix(rows [][]float64, cfg *config) Value {
	if len(rows) == 0 {
		return normalizeArray(ndim.Empty(), cfg)
	}

	width := len(rows[0])
	rectangular := true
	for _, row := range rows[1:] {
		if len(row) != width {
			rectangular = false
			break
		}
	}

	if !rectangular {
		elems := make([]Value, len(rows))
		for i, row := range rows {
			elems[i] = normalizeArray(ndim.FromSlice(row), cfg)
		}

		return Sequence(elems...)
	}

	flat := make([]float64, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
	}

	arr, err := ndim.New([]int{len(rows), width}, flat)
	if err != nil {
		return Value{}
	}

	return normalizeArray(arr, cfg)
}
