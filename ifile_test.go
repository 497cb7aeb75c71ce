package ifile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avlkit/ifile/container"
	"github.com/avlkit/ifile/snapshot"
)

func caBlock(f func(s, c int) float64) map[string]any {
	data := make([][]float64, 5)
	for s := range data {
		row := make([]float64, 3)
		for c := range row {
			row[c] = f(s, c)
		}
		data[s] = row
	}

	return map[string]any{
		"data":  data,
		"axis":  []float64{-10, -5, 0, 5, 10},
		"units": "bar",
	}
}

func sampleRaw() map[string]any {
	ref := func(s, c int) float64 { return float64(s*10 + c) }

	return map[string]any{
		"SDREF":    caBlock(ref),
		"ZYL1SAUG": caBlock(func(s, c int) float64 { return ref(s, c) - 2 }),
		"engine": map[string]any{
			"name": "M254",
			"bore": 82.5,
		},
		"header": map[string]any{
			"date": "20240301123000",
		},
	}
}

func TestNewAppliesOffsetCorrection(t *testing.T) {
	f, err := New(sampleRaw(), WithTestName("run42.i00"))
	require.NoError(t, err)

	require.Equal(t, []container.Pair{
		{Measured: "ZYL1SAUG", Reference: "SDREF"},
	}, f.CorrectionPairs())

	meas, err := f.Block("ZYL1SAUG")
	require.NoError(t, err)
	ref, err := f.Block("SDREF")
	require.NoError(t, err)

	m, r := meas.Data.Data(), ref.Data.Data()
	for i := range m {
		require.InDelta(t, r[i], m[i], 1e-9)
	}

	view, err := f.CA().Get("ZYL1SAUG")
	require.NoError(t, err)
	g := view.General()
	require.Equal(t, "Crank Angle", g.Base)
	require.Equal(t, "run42.i00", g.Test)
}

func TestNewWithoutOffsetCorrection(t *testing.T) {
	f, err := New(sampleRaw(), WithOffsetCorrection(false))
	require.NoError(t, err)

	require.Empty(t, f.CorrectionPairs())

	meas, err := f.Block("ZYL1SAUG")
	require.NoError(t, err)
	require.Equal(t, -2.0, meas.Data.At(0, 0))
}

func TestNewSynthesizesParameters(t *testing.T) {
	f, err := New(sampleRaw())
	require.NoError(t, err)

	params := f.Parameters()
	require.True(t, params.Has("ENGINE"))
	require.True(t, params.Has("BORE"))
	require.True(t, params.Has("DATE"))

	ts, err := params.Get("TIMESTAMP")
	require.NoError(t, err)
	col, ok := ts.Values().Get("TIMESTAMP")
	require.True(t, ok)
	require.Equal(t, []string{"2024-03-01 12:30:00"}, col.Texts())
}

func TestNewWithLoggerRejectsNil(t *testing.T) {
	_, err := New(sampleRaw(), WithLogger(nil))
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	f, err := New(sampleRaw(), WithTestName("run42.i00"))
	require.NoError(t, err)

	blob, err := EncodeSnapshot(f)
	require.NoError(t, err)

	restored, info, err := DecodeSnapshot(blob)
	require.NoError(t, err)
	require.NotZero(t, info.ID)

	// The test identifier travels inside the snapshot.
	require.Equal(t, "run42.i00", restored.Test())

	// Corrected data and the applied-pair registry survive the round trip.
	require.Equal(t, f.CorrectionPairs(), restored.CorrectionPairs())

	orig, err := f.Block("ZYL1SAUG")
	require.NoError(t, err)
	got, err := restored.Block("ZYL1SAUG")
	require.NoError(t, err)
	require.Equal(t, orig.Data.Shape(), got.Data.Shape())
	require.Equal(t, orig.Data.Flatten(), got.Data.Flatten())

	view, err := restored.CA().Get("ZYL1SAUG")
	require.NoError(t, err)
	require.Equal(t, "run42.i00", view.General().Test)
	require.True(t, restored.Parameters().Has("BORE"))
}

func TestDecodeSnapshotReappliesOnRequest(t *testing.T) {
	f, err := New(sampleRaw())
	require.NoError(t, err)

	blob, err := EncodeSnapshot(f)
	require.NoError(t, err)

	orig, _ := f.Block("ZYL1SAUG")
	origData := orig.Data.Flatten()

	restored, _, err := DecodeSnapshot(blob, WithOffsetCorrection(true))
	require.NoError(t, err)

	// Re-running registered pairs computes a residual near-zero offset.
	got, err := restored.Block("ZYL1SAUG")
	require.NoError(t, err)
	for i, v := range got.Data.Data() {
		require.InDelta(t, origData[i], v, 1e-9)
	}
}

func TestEncodeSnapshotOptions(t *testing.T) {
	f, err := New(sampleRaw())
	require.NoError(t, err)

	blob, err := EncodeSnapshot(f, snapshot.WithBigEndianEncoding())
	require.NoError(t, err)

	_, info, err := DecodeSnapshot(blob)
	require.NoError(t, err)
	require.True(t, info.BigEndian)
}

func TestEntryIDIsDeterministic(t *testing.T) {
	require.Equal(t, EntryID("PCYL1"), EntryID("PCYL1"))
	require.NotEqual(t, EntryID("PCYL1"), EntryID("PCYL2"))
}
