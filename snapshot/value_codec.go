package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/avlkit/ifile/endian"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/format"
	"github.com/avlkit/ifile/ndim"
	"github.com/avlkit/ifile/value"
)

// appendValue encodes one value tree node: a tag byte followed by the
// variant's payload. Varints are endianness-free; fixed-width integers and
// float bits follow the snapshot's byte order.
//
// Opaque values cannot travel in a snapshot; encoding one fails with
// errs.ErrOpaqueValue.
func appendValue(dst []byte, v value.Value, engine endian.EndianEngine) ([]byte, error) {
	switch v.Kind() {
	case value.KindInvalid:
		return append(dst, byte(format.TagInvalid)), nil
	case value.KindScalar:
		f, _ := v.Float()
		dst = append(dst, byte(format.TagScalar))

		return engine.AppendUint64(dst, math.Float64bits(f)), nil
	case value.KindText:
		s, _ := v.Str()
		dst = append(dst, byte(format.TagText))
		dst = binary.AppendUvarint(dst, uint64(len(s)))

		return append(dst, s...), nil
	case value.KindArray:
		arr, _ := v.Arr()
		return appendArray(dst, arr, engine), nil
	case value.KindSequence:
		seq, _ := v.Seq()
		dst = append(dst, byte(format.TagSequence))
		dst = binary.AppendUvarint(dst, uint64(len(seq)))
		var err error
		for _, elem := range seq {
			dst, err = appendValue(dst, elem, engine)
			if err != nil {
				return nil, err
			}
		}

		return dst, nil
	case value.KindRecord:
		rec, _ := v.Record()
		return appendRecord(dst, rec, engine)
	case value.KindOpaque:
		return nil, fmt.Errorf("%w: %T", errs.ErrOpaqueValue, v.Raw())
	default:
		return nil, fmt.Errorf("%w: unknown value kind %d", errs.ErrCorruptSnapshot, v.Kind())
	}
}

func appendArray(dst []byte, arr *ndim.Array, engine endian.EndianEngine) []byte {
	dst = append(dst, byte(format.TagArray))

	shape := arr.Shape()
	dst = binary.AppendUvarint(dst, uint64(len(shape)))
	for _, d := range shape {
		dst = binary.AppendUvarint(dst, uint64(d))
	}
	for _, f := range arr.Data() {
		dst = engine.AppendUint64(dst, math.Float64bits(f))
	}

	return dst
}

func appendRecord(dst []byte, rec *value.Record, engine endian.EndianEngine) ([]byte, error) {
	dst = append(dst, byte(format.TagRecord))
	dst = binary.AppendUvarint(dst, uint64(rec.Len()))

	var err error
	for _, key := range rec.Keys() {
		dst = binary.AppendUvarint(dst, uint64(len(key)))
		dst = append(dst, key...)

		field, _ := rec.Get(key)
		dst, err = appendValue(dst, field, engine)
		if err != nil {
			return nil, err
		}
	}

	return dst, nil
}

// valueReader decodes value trees from an encoded payload slice.
type valueReader struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

func (r *valueReader) corrupt(what string) error {
	return fmt.Errorf("%w: truncated %s at offset %d", errs.ErrCorruptSnapshot, what, r.pos)
}

func (r *valueReader) uvarint(what string) (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, r.corrupt(what)
	}
	r.pos += n

	return v, nil
}

func (r *valueReader) bytes(n int, what string) ([]byte, error) {
	// Compare against the remaining length rather than r.pos+n, which
	// wraps for n near MaxInt.
	if n < 0 || n > len(r.buf)-r.pos {
		return nil, r.corrupt(what)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

func (r *valueReader) float64(what string) (float64, error) {
	b, err := r.bytes(8, what)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(r.engine.Uint64(b)), nil
}

func (r *valueReader) readValue() (value.Value, error) {
	tagByte, err := r.bytes(1, "value tag")
	if err != nil {
		return value.Value{}, err
	}

	switch format.TagType(tagByte[0]) {
	case format.TagInvalid:
		return value.Value{}, nil
	case format.TagScalar:
		f, err := r.float64("scalar")
		if err != nil {
			return value.Value{}, err
		}

		return value.Scalar(f), nil
	case format.TagText:
		n, err := r.uvarint("text length")
		if err != nil {
			return value.Value{}, err
		}
		b, err := r.bytes(int(n), "text")
		if err != nil {
			return value.Value{}, err
		}

		return value.Text(string(b)), nil
	case format.TagArray:
		return r.readArray()
	case format.TagSequence:
		n, err := r.uvarint("sequence length")
		if err != nil {
			return value.Value{}, err
		}
		// Each element takes at least one payload byte.
		if n > uint64(len(r.buf)-r.pos) {
			return value.Value{}, r.corrupt("sequence length")
		}
		elems := make([]value.Value, 0, n)
		for i := uint64(0); i < n; i++ {
			elem, err := r.readValue()
			if err != nil {
				return value.Value{}, err
			}
			elems = append(elems, elem)
		}

		return value.Sequence(elems...), nil
	case format.TagRecord:
		return r.readRecord()
	default:
		return value.Value{}, fmt.Errorf("%w: unknown value tag 0x%02x", errs.ErrCorruptSnapshot, tagByte[0])
	}
}

func (r *valueReader) readArray() (value.Value, error) {
	nd, err := r.uvarint("array rank")
	if err != nil {
		return value.Value{}, err
	}
	// Each dimension takes at least one payload byte.
	if nd > uint64(len(r.buf)-r.pos) {
		return value.Value{}, r.corrupt("array rank")
	}

	shape := make([]int, nd)
	size := uint64(1)
	for i := range shape {
		d, err := r.uvarint("array dimension")
		if err != nil {
			return value.Value{}, err
		}
		// The data takes 8 bytes per element, so any honest element count
		// fits in the remaining payload. Rejecting each dimension against
		// that bound keeps the running product from overflowing.
		limit := uint64(len(r.buf)-r.pos) / 8
		if d > limit || (d > 0 && size > limit/d) {
			return value.Value{}, r.corrupt("array dimension")
		}
		shape[i] = int(d)
		size *= d
	}

	raw, err := r.bytes(int(size)*8, "array data")
	if err != nil {
		return value.Value{}, err
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = math.Float64frombits(r.engine.Uint64(raw[i*8:]))
	}

	arr, err := ndim.New(shape, data)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %v", errs.ErrCorruptSnapshot, err)
	}

	return value.Array(arr), nil
}

func (r *valueReader) readRecord() (value.Value, error) {
	n, err := r.uvarint("record length")
	if err != nil {
		return value.Value{}, err
	}

	rec := value.NewRecord()
	for i := uint64(0); i < n; i++ {
		klen, err := r.uvarint("record key length")
		if err != nil {
			return value.Value{}, err
		}
		key, err := r.bytes(int(klen), "record key")
		if err != nil {
			return value.Value{}, err
		}

		field, err := r.readValue()
		if err != nil {
			return value.Value{}, err
		}
		rec.Set(string(key), field)
	}

	return value.Rec(rec), nil
}
