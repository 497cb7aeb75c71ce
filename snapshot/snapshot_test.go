package snapshot

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avlkit/ifile/endian"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/format"
	"github.com/avlkit/ifile/ndim"
	"github.com/avlkit/ifile/value"
)

func sampleRoot(t *testing.T) *value.Record {
	t.Helper()

	arr, err := ndim.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	root, ok := value.Normalize(map[string]any{
		"engine": map[string]any{
			"name": "M254",
			"bore": 82.5,
		},
		"PCYL1": map[string]any{
			"data":  value.Array(arr),
			"axis":  []float64{-10, 0, 10},
			"units": "bar",
		},
		"note":  "free text",
		"count": 3.0,
		"tags":  []any{"a", "b", 1.5},
	}).Record()
	require.True(t, ok)

	return root
}

func requireEqualValue(t *testing.T, want, got value.Value) {
	t.Helper()
	require.Equal(t, want.Kind(), got.Kind())

	switch want.Kind() {
	case value.KindScalar:
		wf, _ := want.Float()
		gf, _ := got.Float()
		require.Equal(t, wf, gf)
	case value.KindText:
		ws, _ := want.Str()
		gs, _ := got.Str()
		require.Equal(t, ws, gs)
	case value.KindArray:
		wa, _ := want.Arr()
		ga, _ := got.Arr()
		require.Equal(t, wa.Shape(), ga.Shape())
		require.Equal(t, wa.Flatten(), ga.Flatten())
	case value.KindSequence:
		wseq, _ := want.Seq()
		gseq, _ := got.Seq()
		require.Len(t, gseq, len(wseq))
		for i := range wseq {
			requireEqualValue(t, wseq[i], gseq[i])
		}
	case value.KindRecord:
		wr, _ := want.Record()
		gr, _ := got.Record()
		requireEqualRecord(t, wr, gr)
	}
}

func requireEqualRecord(t *testing.T, want, got *value.Record) {
	t.Helper()
	require.Equal(t, want.Keys(), got.Keys())
	for _, key := range want.Keys() {
		wv, _ := want.Get(key)
		gv, _ := got.Get(key)
		requireEqualValue(t, wv, gv)
	}
}

func TestRoundTripAllCodecs(t *testing.T) {
	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionXZ,
	}

	root := sampleRoot(t)

	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			enc, err := NewEncoder(WithCompression(ct))
			require.NoError(t, err)

			blob, err := enc.Encode(root)
			require.NoError(t, err)

			got, info, err := Decode(blob)
			require.NoError(t, err)
			require.Equal(t, ct, info.Compression)
			require.False(t, info.BigEndian)
			require.Equal(t, root.Len(), info.EntryCount)
			require.NotZero(t, info.ID)
			require.False(t, info.CreatedAt.IsZero())

			requireEqualRecord(t, root, got)
		})
	}
}

func TestRoundTripBigEndian(t *testing.T) {
	enc, err := NewEncoder(WithBigEndianEncoding(), WithCompression(format.CompressionS2))
	require.NoError(t, err)

	root := sampleRoot(t)
	blob, err := enc.Encode(root)
	require.NoError(t, err)

	got, info, err := Decode(blob)
	require.NoError(t, err)
	require.True(t, info.BigEndian)
	requireEqualRecord(t, root, got)
}

func TestRoundTripInvalidValue(t *testing.T) {
	root := value.NewRecord()
	root.Set("absent", value.Value{})

	enc, err := NewEncoder(WithCompression(format.CompressionNone))
	require.NoError(t, err)
	blob, err := enc.Encode(root)
	require.NoError(t, err)

	got, _, err := Decode(blob)
	require.NoError(t, err)
	v, ok := got.Get("absent")
	require.True(t, ok)
	require.False(t, v.IsValid())
}

func TestEncodeRejectsOpaqueValues(t *testing.T) {
	root := value.NewRecord()
	root.Set("leaf", value.Opaque(struct{ X int }{1}))

	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(root)
	require.ErrorIs(t, err, errs.ErrOpaqueValue)
}

func TestEncodeRejectsNilRoot(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(nil)
	require.Error(t, err)
}

func TestDecodeDetectsTampering(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionNone))
	require.NoError(t, err)
	blob, err := enc.Encode(sampleRoot(t))
	require.NoError(t, err)

	for _, pos := range []int{headerSize / 2, headerSize + 3, len(blob) - digestSize - 1} {
		tampered := append([]byte(nil), blob...)
		tampered[pos] ^= 0x80

		_, _, err = Decode(tampered)
		require.Error(t, err)
	}
}

func TestDecodeRejectsShortInput(t *testing.T) {
	_, _, err := Decode(make([]byte, headerSize+digestSize-1))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := make([]byte, headerSize+digestSize)
	_, _, err := Decode(blob)
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestSnapshotsCarryDistinctIDs(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionNone))
	require.NoError(t, err)

	root := sampleRoot(t)
	first, err := enc.Encode(root)
	require.NoError(t, err)
	second, err := enc.Encode(root)
	require.NoError(t, err)

	_, firstInfo, err := Decode(first)
	require.NoError(t, err)
	_, secondInfo, err := Decode(second)
	require.NoError(t, err)
	require.NotEqual(t, firstInfo.ID, secondInfo.ID)
}

func TestWithCompressionRejectsUnknownType(t *testing.T) {
	_, err := NewEncoder(WithCompression(format.CompressionType(0xFF)))
	require.Error(t, err)
}

// The digest trailer proves integrity, not provenance: anyone can compute a
// matching one for forged bytes. Declared sizes must therefore be validated
// against the payload before any allocation, never trusted.
func TestReadValueRejectsForgedSizes(t *testing.T) {
	cases := map[string][]byte{
		// Rank-1 array with dimension 2^61: size*8 wraps to 0 in 64-bit
		// arithmetic, so an unchecked reader would pass its bounds check
		// and die allocating the element slice.
		"array dimension overflow": binary.AppendUvarint(binary.AppendUvarint(
			[]byte{byte(format.TagArray)}, 1), 1<<61),
		// Two dimensions that each fit the remaining payload while their
		// product does not.
		"array dimension product too large": append(binary.AppendUvarint(binary.AppendUvarint(binary.AppendUvarint(
			[]byte{byte(format.TagArray)}, 2), 40), 40), make([]byte, 400)...),
		// More dimensions than remaining payload bytes.
		"array rank too large": binary.AppendUvarint(
			[]byte{byte(format.TagArray)}, math.MaxUint32),
		// Text length near MaxInt: r.pos+n would wrap past the bounds check.
		"text length overflow": binary.AppendUvarint(
			[]byte{byte(format.TagText)}, math.MaxInt64-1),
		// Sequence length chosen to blow up the element pre-allocation.
		"sequence length too large": binary.AppendUvarint(
			[]byte{byte(format.TagSequence)}, 1<<61),
	}

	for name, forged := range cases {
		t.Run(name, func(t *testing.T) {
			r := &valueReader{buf: forged, engine: endian.GetLittleEndianEngine()}
			_, err := r.readValue()
			require.ErrorIs(t, err, errs.ErrCorruptSnapshot)
		})
	}
}
