package channel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avlkit/ifile/value"
)

func paramRecord(fields map[string]any) value.Value {
	return value.Normalize(fields)
}

func TestParameterGeneral_FixedShape(t *testing.T) {
	p := NewParameterView("BORE", paramRecord(map[string]any{
		"value":       82.5,
		"unit":        "mm",
		"description": "bore diameter",
	}), "run42.i00")

	g := p.General()
	require.Equal(t, "BORE", g.Channel)
	require.Equal(t, "mm", g.Units)
	require.Equal(t, "bore diameter", g.Description)
	require.Equal(t, "", g.Base)
	require.Equal(t, 1, g.RecordCount)
	require.Equal(t, "", g.Range)
	require.Equal(t, "run42.i00", g.Test)
}

func TestParameterGeneral_AnyInputKeepsInvariants(t *testing.T) {
	cases := []value.Value{
		value.Scalar(1),
		value.Text("oops"),
		value.Value{},
		paramRecord(map[string]any{"unrelated": 1.0}),
	}
	for _, v := range cases {
		g := NewParameterView("X", v, "").General()
		require.Equal(t, 1, g.RecordCount)
		require.Equal(t, "", g.Base)
		require.Equal(t, "", g.Range)
	}
}

func TestParameterValues_DeclaredValue(t *testing.T) {
	p := NewParameterView("NRSTROKE", paramRecord(map[string]any{"value": 4.0}), "")
	vals := p.Values()

	require.Equal(t, []string{"", "NRSTROKE"}, vals.Keys())

	idx, ok := vals.Get("")
	require.True(t, ok)
	require.Equal(t, []float64{0}, idx.Numbers())

	col, ok := vals.Get("NRSTROKE")
	require.True(t, ok)
	require.False(t, col.IsText())
	require.Equal(t, []float64{4}, col.Numbers())
}

func TestParameterValues_FirstOfValues(t *testing.T) {
	p := NewParameterView("EPSILON", paramRecord(map[string]any{
		"values": []float64{10.5, 11.0},
	}), "")

	col, _ := p.Values().Get("EPSILON")
	require.Equal(t, []float64{10.5}, col.Numbers())
}

func TestParameterValues_NumericString(t *testing.T) {
	p := NewParameterView("PINOFF", paramRecord(map[string]any{"value": "0.8"}), "")
	col, _ := p.Values().Get("PINOFF")
	require.Equal(t, []float64{0.8}, col.Numbers())
}

func TestParameterValues_NonNumericStringIsNaN(t *testing.T) {
	p := NewParameterView("ENGINE", paramRecord(map[string]any{"value": "M254"}), "")
	col, _ := p.Values().Get("ENGINE")
	require.False(t, col.IsText())
	require.True(t, math.IsNaN(col.Numbers()[0]))
}

func TestParameterValues_TimestampKeepsText(t *testing.T) {
	p := NewParameterView("TIMESTAMP", paramRecord(map[string]any{
		"values":      []any{"2024-03-01 12:30:00"},
		"unit":        "",
		"description": "time stamp",
	}), "")

	col, _ := p.Values().Get("TIMESTAMP")
	require.True(t, col.IsText())
	require.Equal(t, []string{"2024-03-01 12:30:00"}, col.Texts())
}

func TestParameterValues_DirectScalar(t *testing.T) {
	p := NewParameterView("N", value.Scalar(2000), "")
	col, _ := p.Values().Get("N")
	require.Equal(t, []float64{2000}, col.Numbers())

	g := p.General()
	require.Equal(t, "-", g.Units)
	require.Equal(t, "", g.Description)
}

func TestParameterValues_UnextractableIsNaN(t *testing.T) {
	p := NewParameterView("X", paramRecord(map[string]any{"other": 3.0}), "")
	col, _ := p.Values().Get("X")
	require.True(t, math.IsNaN(col.Numbers()[0]))

	p = NewParameterView("Y", value.Value{}, "")
	col, _ = p.Values().Get("Y")
	require.True(t, math.IsNaN(col.Numbers()[0]))
}

func TestParameterValues_UnitsFallbackKey(t *testing.T) {
	p := NewParameterView("B", paramRecord(map[string]any{
		"value": 1.0,
		"units": "mm",
	}), "")
	require.Equal(t, "mm", p.General().Units)
}
