package channel

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/avlkit/ifile/axis"
)

// View is a read-through view over one named RawBlock. It owns no data and
// recomputes every product on access; callers needing repeated access to
// the same product should memoize it themselves.
type View struct {
	name  string
	block *RawBlock
	test  string
}

// NewView creates a channel view. test identifies the originating
// measurement file and may be empty.
func NewView(name string, block *RawBlock, test string) *View {
	if block == nil {
		block = BlockFromRecord(nil)
	}

	return &View{name: name, block: block, test: test}
}

// Name returns the channel name.
func (v *View) Name() string {
	return v.name
}

// Block returns the underlying raw block.
func (v *View) Block() *RawBlock {
	return v.block
}

// General builds the GENERAL metadata record for this channel.
//
// Base and the range unit follow the axis classification: crank-angle
// channels report "Crank Angle" with a "deg" range, cycle channels report
// "Cycle" with unit "-". RecordCount is the total flattened element count.
func (v *View) General() General {
	kind := v.block.AxisKind()

	base := "Cycle"
	rangeUnit := "-"
	if kind == axis.KindCrankAngle {
		base = "Crank Angle"
		rangeUnit = "deg"
	}

	return General{
		Channel:     v.name,
		Units:       v.block.Units,
		Description: v.block.Description,
		Base:        base,
		RecordCount: v.block.Data.Size(),
		Range:       axis.FormatRange(v.block.Axis, rangeUnit),
		Test:        v.test,
	}
}

// Samples flattens the block's data to a single per-sample sequence,
// orienting the array so the axis dimension varies fastest.
//
// The decision tree, by data rank:
//   - empty: empty sequence.
//   - 1-D: returned as-is.
//   - 2-D: row-major flatten when the axis matches the columns; transpose
//     then flatten when it matches the rows; plain row-major flatten as a
//     last resort when neither matches.
//   - 3-D and higher: the first dimension whose size equals the axis length
//     is moved to the last position, then the array is flattened; with no
//     matching dimension the array is flattened as-is.
//
// Shape mismatches never fail; they degrade to the fallback flatten with a
// debug diagnostic.
func (v *View) Samples() []float64 {
	data := v.block.Data
	axisLen := len(v.block.Axis)

	if data.Size() == 0 {
		return []float64{}
	}

	switch data.NDim() {
	case 1:
		return data.Flatten()
	case 2:
		if axisLen == data.Dim(1) {
			return data.Flatten()
		}
		if axisLen == data.Dim(0) {
			tr, err := data.Transpose2D()
			if err == nil {
				return tr.Flatten()
			}
		}
		v.logShapeMismatch(axisLen)

		return data.Flatten()
	default:
		if dim := v.matchAxisDim(); dim >= 0 {
			moved, err := data.MoveAxisLast(dim)
			if err == nil {
				return moved.Flatten()
			}
		}
		if data.NDim() >= 3 {
			v.logShapeMismatch(axisLen)
		}

		return data.Flatten()
	}
}

// Values builds the tabular VALUES mapping: a synthesized "CA" axis column
// aligned one-to-one with each data column.
//
// The shape decisions mirror Samples, with the axis column synthesized to
// match:
//   - 1-D: the axis itself (cycled to the data length on size mismatch, a
//     0..N-1 index when the axis is empty).
//   - 2-D with axis matching columns: axis tiled once per row.
//   - 2-D with axis matching rows: axis elements each repeated once per
//     column, data flattened column-major.
//   - 2-D without a match: axis cycled to the total element count (index
//     axis when empty), data flattened row-major.
//   - 3-D and higher with a matched dimension: the matched dimension moves
//     last; a leading dimension of size > 1 becomes a component dimension,
//     yielding one data column per component (named by the declared
//     component names when their count matches, "{name}_{i+1}" otherwise),
//     all sharing one tiled axis column.
//   - 3-D and higher without a match: same fallback as the 2-D no-match
//     case.
func (v *View) Values() *Values {
	out := newValues()
	data := v.block.Data
	ax := v.block.Axis
	axisLen := len(ax)

	if data.Size() == 0 {
		out.add("CA", NumericColumn([]float64{}))
		out.add(v.name, NumericColumn([]float64{}))

		return out
	}

	switch data.NDim() {
	case 1:
		n := data.Size()
		var ca []float64
		switch {
		case axisLen == n:
			ca = slices.Clone(ax)
		case axisLen > 0:
			ca = resizeTo(ax, n)
		default:
			ca = indexAxis(n)
		}
		out.add("CA", NumericColumn(ca))
		out.add(v.name, NumericColumn(data.Flatten()))
	case 2:
		rows, cols := data.Dim(0), data.Dim(1)
		switch {
		case axisLen == cols:
			// Independent variable varies fastest: one axis sweep per row.
			out.add("CA", NumericColumn(tile(ax, rows)))
			out.add(v.name, NumericColumn(data.Flatten()))
		case axisLen == rows:
			tr, err := data.Transpose2D()
			if err != nil {
				v.fallbackValues(out)
				return out
			}
			out.add("CA", NumericColumn(repeatEach(ax, cols)))
			out.add(v.name, NumericColumn(tr.Flatten()))
		default:
			v.logShapeMismatch(axisLen)
			v.fallbackValues(out)
		}
	default:
		dim := v.matchAxisDim()
		if dim < 0 {
			if data.NDim() >= 3 {
				v.logShapeMismatch(axisLen)
			}
			v.fallbackValues(out)

			return out
		}

		moved, err := data.MoveAxisLast(dim)
		if err != nil {
			v.fallbackValues(out)
			return out
		}

		shape := moved.Shape()
		leading := shape[:len(shape)-1]
		total := moved.Size()

		if len(leading) > 0 && leading[0] > 1 {
			components := leading[0]
			perComponent := total / components

			out.add("CA", NumericColumn(tile(ax, perComponent/axisLen)))

			names := v.block.Components
			if len(names) != components {
				names = make([]string, components)
				for i := range names {
					names[i] = fmt.Sprintf("%s_%d", v.name, i+1)
				}
			}

			flat := moved.Flatten()
			for i, cname := range names {
				out.add(cname, NumericColumn(flat[i*perComponent:(i+1)*perComponent]))
			}
		} else {
			out.add("CA", NumericColumn(tile(ax, total/axisLen)))
			out.add(v.name, NumericColumn(moved.Flatten()))
		}
	}

	return out
}

// fallbackValues fills the no-match layout: axis cycled to the total
// element count (or an index axis) against a row-major flatten.
func (v *View) fallbackValues(out *Values) {
	data := v.block.Data
	ax := v.block.Axis
	total := data.Size()

	var ca []float64
	if len(ax) > 0 {
		ca = resizeTo(ax, total)
	} else {
		ca = indexAxis(total)
	}

	out.add("CA", NumericColumn(ca))
	out.add(v.name, NumericColumn(data.Flatten()))
}

// matchAxisDim returns the first data dimension whose size equals the axis
// length, -1 when none matches. First match wins when several dimensions
// tie.
func (v *View) matchAxisDim() int {
	axisLen := len(v.block.Axis)
	if axisLen == 0 {
		return -1
	}

	for i, s := range v.block.Data.Shape() {
		if s == axisLen {
			return i
		}
	}

	return -1
}

func (v *View) logShapeMismatch(axisLen int) {
	slog.Debug("channel axis does not match any data dimension, using row-major flatten",
		"channel", v.name,
		"shape", v.block.Data.Shape(),
		"axis_len", axisLen,
	)
}
