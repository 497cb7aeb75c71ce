package correction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avlkit/ifile/container"
	"github.com/avlkit/ifile/errs"
)

// grid builds [samples][cycles] data from f(sample, cycle).
func grid(samples, cycles int, f func(s, c int) float64) [][]float64 {
	out := make([][]float64, samples)
	for s := range out {
		row := make([]float64, cycles)
		for c := range row {
			row[c] = f(s, c)
		}
		out[s] = row
	}

	return out
}

func block(axis []float64, data [][]float64) map[string]any {
	return map[string]any{"data": data, "axis": axis}
}

func newContainer(t *testing.T, raw map[string]any) *container.Container {
	t.Helper()
	c, err := container.New(raw)
	require.NoError(t, err)

	return c
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)

	return e
}

func TestCorrectExactOffset(t *testing.T) {
	axis := []float64{0, 1, 2, 3, 4}
	ref := func(s, c int) float64 { return float64(s*10 + c) }

	c := newContainer(t, map[string]any{
		"REF":  block(axis, grid(5, 3, ref)),
		"MEAS": block(axis, grid(5, 3, func(s, cy int) float64 { return ref(s, cy) - 2 })),
	})

	require.NoError(t, newEngine(t).Correct(c, "MEAS", "REF"))

	mb, err := c.Block("MEAS")
	require.NoError(t, err)
	rb, err := c.Block("REF")
	require.NoError(t, err)

	require.Equal(t, []int{5, 3}, mb.Data.Shape())
	m, r := mb.Data.Data(), rb.Data.Data()
	for i := range m {
		require.InDelta(t, r[i], m[i], 1e-9)
	}
}

func TestCorrectIsNearIdempotent(t *testing.T) {
	axis := []float64{0, 1, 2, 3, 4}
	ref := func(s, c int) float64 { return float64(s) + 0.5*float64(c) }

	c := newContainer(t, map[string]any{
		"REF":  block(axis, grid(5, 3, ref)),
		"MEAS": block(axis, grid(5, 3, func(s, cy int) float64 { return ref(s, cy) + 7 })),
	})

	e := newEngine(t)
	require.NoError(t, e.Correct(c, "MEAS", "REF"))
	first, _ := c.Block("MEAS")
	firstData := first.Data.Flatten()

	// A second run computes a residual near-zero offset, not more drift.
	require.NoError(t, e.Correct(c, "MEAS", "REF"))
	second, _ := c.Block("MEAS")
	for i, v := range second.Data.Data() {
		require.InDelta(t, firstData[i], v, 1e-9)
	}
}

func TestCorrectNoOverlapYieldsZeroOffsets(t *testing.T) {
	measured := grid(5, 2, func(s, c int) float64 { return float64(s + c) })

	c := newContainer(t, map[string]any{
		"REF":  block([]float64{100, 101, 102, 103, 104}, grid(5, 2, func(s, c int) float64 { return 1 })),
		"MEAS": block([]float64{0, 1, 2, 3, 4}, measured),
	})

	require.NoError(t, newEngine(t).Correct(c, "MEAS", "REF"))

	mb, err := c.Block("MEAS")
	require.NoError(t, err)
	for s := 0; s < 5; s++ {
		for cy := 0; cy < 2; cy++ {
			require.Equal(t, measured[s][cy], mb.Data.At(s, cy))
		}
	}
}

func TestCorrectPartialOverlap(t *testing.T) {
	// Reference axis positions 5 and 6 fall outside the measured axis and
	// must not contribute to the offset.
	c := newContainer(t, map[string]any{
		"REF":  block([]float64{2, 3, 4, 5, 6}, grid(5, 1, func(s, c int) float64 { return 10 })),
		"MEAS": block([]float64{0, 1, 2, 3, 4}, grid(5, 1, func(s, c int) float64 { return 4 })),
	})

	require.NoError(t, newEngine(t).Correct(c, "MEAS", "REF"))

	mb, err := c.Block("MEAS")
	require.NoError(t, err)
	// Offset = mean(10-4) over the three overlapping positions = 6.
	require.InDelta(t, 10.0, mb.Data.At(0, 0), 1e-9)
}

func TestCorrectSkipsInvalidSamples(t *testing.T) {
	measured := grid(3, 1, func(s, c int) float64 { return 1 })
	measured[1][0] = math.NaN()

	c := newContainer(t, map[string]any{
		"REF":  block([]float64{0, 1, 2}, grid(3, 1, func(s, c int) float64 { return 5 })),
		"MEAS": block([]float64{0, 1, 2}, measured),
	})

	require.NoError(t, newEngine(t).Correct(c, "MEAS", "REF"))

	mb, err := c.Block("MEAS")
	require.NoError(t, err)
	// Offset from the two valid positions is 4; the NaN sample stays NaN.
	require.InDelta(t, 5.0, mb.Data.At(0, 0), 1e-9)
	require.True(t, math.IsNaN(mb.Data.At(1, 0)))
	require.InDelta(t, 5.0, mb.Data.At(2, 0), 1e-9)
}

func TestCorrectCycleCountMismatch(t *testing.T) {
	axis := []float64{0, 1, 2}
	measured := grid(3, 4, func(s, c int) float64 { return float64(s) })

	c := newContainer(t, map[string]any{
		"REF":  block(axis, grid(3, 3, func(s, c int) float64 { return float64(s) })),
		"MEAS": block(axis, measured),
	})

	err := newEngine(t).Correct(c, "MEAS", "REF")
	require.ErrorIs(t, err, errs.ErrCycleCountMismatch)

	// Both blocks keep their data untouched.
	mb, _ := c.Block("MEAS")
	for s := 0; s < 3; s++ {
		for cy := 0; cy < 4; cy++ {
			require.Equal(t, measured[s][cy], mb.Data.At(s, cy))
		}
	}
}

func TestCorrectRequiresTwoDimensionalData(t *testing.T) {
	c := newContainer(t, map[string]any{
		"REF": block([]float64{0, 1, 2}, grid(3, 2, func(s, c int) float64 { return 0 })),
		"MEAS": map[string]any{
			"data": []float64{1, 2, 3},
			"axis": []float64{0, 1, 2},
		},
	})

	err := newEngine(t).Correct(c, "MEAS", "REF")
	require.ErrorIs(t, err, errs.ErrNotTwoDimensional)
}

func TestCorrectMissingChannelIsSkip(t *testing.T) {
	c := newContainer(t, map[string]any{
		"REF": block([]float64{0, 1, 2}, grid(3, 2, func(s, c int) float64 { return 0 })),
	})

	e := newEngine(t)
	require.NoError(t, e.Correct(c, "MEAS", "REF"))
	require.NoError(t, e.Correct(c, "REF", "GONE"))
}

func TestApplyRunsRegisteredPairs(t *testing.T) {
	axis := []float64{0, 1, 2}
	ref := func(s, c int) float64 { return float64(s * 2) }

	c := newContainer(t, map[string]any{
		"REF": block(axis, grid(3, 2, ref)),
		"A":   block(axis, grid(3, 2, func(s, cy int) float64 { return ref(s, cy) - 1 })),
		"B":   block(axis, grid(3, 2, func(s, cy int) float64 { return ref(s, cy) + 3 })),
	})
	c.SetCorrectionPairs([]container.Pair{
		{Measured: "A", Reference: "REF"},
		{Measured: "B", Reference: "REF"},
	})

	require.NoError(t, newEngine(t).Apply(c))

	for _, name := range []string{"A", "B"} {
		mb, err := c.Block(name)
		require.NoError(t, err)
		for s := 0; s < 3; s++ {
			for cy := 0; cy < 2; cy++ {
				require.InDelta(t, ref(s, cy), mb.Data.At(s, cy), 1e-9)
			}
		}
	}
}

func TestApplyAbortsOnFirstError(t *testing.T) {
	axis := []float64{0, 1, 2}

	c := newContainer(t, map[string]any{
		"REF": block(axis, grid(3, 2, func(s, c int) float64 { return 0 })),
		"BAD": block(axis, grid(3, 3, func(s, c int) float64 { return 0 })),
		"OK":  block(axis, grid(3, 2, func(s, c int) float64 { return -1 })),
	})
	c.SetCorrectionPairs([]container.Pair{
		{Measured: "BAD", Reference: "REF"},
		{Measured: "OK", Reference: "REF"},
	})

	err := newEngine(t).Apply(c)
	require.ErrorIs(t, err, errs.ErrCycleCountMismatch)

	// The pair behind the failing one was never applied.
	ok, _ := c.Block("OK")
	require.Equal(t, -1.0, ok.Data.At(0, 0))
}

func TestWithLoggerRejectsNil(t *testing.T) {
	_, err := NewEngine(WithLogger(nil))
	require.Error(t, err)
}

func TestInterpInto(t *testing.T) {
	xp := []float64{0, 1, 2}
	fp := []float64{0, 10, 20}

	out := make([]float64, 5)
	interpInto([]float64{-0.5, 0, 0.5, 2, 2.5}, xp, fp, out)

	require.True(t, math.IsNaN(out[0]))
	require.Equal(t, 0.0, out[1])
	require.InDelta(t, 5.0, out[2], 1e-12)
	require.Equal(t, 20.0, out[3])
	require.True(t, math.IsNaN(out[4]))
}

func TestInterpIntoEmptySamplePoints(t *testing.T) {
	out := make([]float64, 2)
	interpInto([]float64{0, 1}, nil, nil, out)
	require.True(t, math.IsNaN(out[0]))
	require.True(t, math.IsNaN(out[1]))
}
