package channel

import (
	"math"
	"strconv"
	"strings"

	"github.com/avlkit/ifile/value"
)

// ParameterView is the axis-less analog of View for scalar and metadata
// entries (engine constants, timestamps). Like channel views it holds no
// state and recomputes its products on every access.
type ParameterView struct {
	name string
	val  value.Value
	test string
}

// NewParameterView creates a parameter view over a normalized parameter
// entry.
func NewParameterView(name string, val value.Value, test string) *ParameterView {
	return &ParameterView{name: name, val: val, test: test}
}

// Name returns the parameter name.
func (p *ParameterView) Name() string {
	return p.name
}

// General builds the GENERAL record for this parameter. Base and Range are
// always empty and RecordCount is always 1.
func (p *ParameterView) General() General {
	ext := p.extract()

	return General{
		Channel:     p.name,
		Units:       ext.unit,
		Description: ext.desc,
		Base:        "",
		RecordCount: 1,
		Range:       "",
		Test:        p.test,
	}
}

// Values builds the parameter's VALUES mapping: a one-element index column
// keyed by the empty string, and a one-element value column keyed by the
// parameter name. The value column is text for string-typed parameters and
// numeric otherwise.
func (p *ParameterView) Values() *Values {
	ext := p.extract()

	out := newValues()
	out.add("", NumericColumn([]float64{0}))
	if ext.isText {
		out.add(p.name, TextColumn([]string{ext.text}))
	} else {
		out.add(p.name, NumericColumn([]float64{ext.num}))
	}

	return out
}

// extracted is the result of pulling a scalar out of a heterogeneous
// parameter entry.
type extracted struct {
	num    float64
	text   string
	isText bool
	unit   string
	desc   string
}

// extract pulls value, unit and description out of the parameter entry.
//
// For record entries the value is tried in order: a declared "value" field,
// the first element of a declared "values" field, then NaN. Direct scalar
// entries coerce as-is. Timestamp parameters keep their string value; every
// other entry coerces to a number (numeric strings parse) and degrades to
// NaN when coercion fails. Unit defaults to "-", description to "".
// Extraction never fails.
func (p *ParameterView) extract() extracted {
	ext := extracted{num: math.NaN(), unit: "-"}

	if !p.val.IsValid() {
		return ext
	}

	rec, isRec := p.val.Record()
	if !isRec {
		p.coerceInto(&ext, p.val)
		return ext
	}

	if v, ok := rec.Get("unit"); ok {
		if s, ok := v.Str(); ok {
			ext.unit = s
		}
	} else if v, ok := rec.Get("units"); ok {
		if s, ok := v.Str(); ok {
			ext.unit = s
		}
	}
	if v, ok := rec.Get("description"); ok {
		if s, ok := v.Str(); ok {
			ext.desc = s
		}
	}

	elem, ok := rec.Get("value")
	if !ok {
		if vs, found := rec.Get("values"); found {
			elem, ok = firstElement(vs)
		}
	}
	if !ok {
		return ext
	}

	p.coerceInto(&ext, elem)

	return ext
}

// coerceInto fills ext from a single extracted element. Only timestamp
// parameters preserve text; other text coerces numerically or becomes NaN.
func (p *ParameterView) coerceInto(ext *extracted, v value.Value) {
	if s, ok := v.Str(); ok {
		if strings.EqualFold(p.name, "TIMESTAMP") {
			ext.text = s
			ext.isText = true

			return
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			ext.num = f
		}

		return
	}

	if f, ok := asNumber(v); ok {
		ext.num = f
	}
}

// firstElement returns the first scalar-bearing element of a values field.
func firstElement(v value.Value) (value.Value, bool) {
	switch v.Kind() {
	case value.KindSequence:
		seq, _ := v.Seq()
		if len(seq) == 0 {
			return value.Value{}, false
		}

		return seq[0], true
	case value.KindArray:
		arr, _ := v.Arr()
		if arr.Size() == 0 {
			return value.Value{}, false
		}

		return value.Scalar(arr.Data()[0]), true
	default:
		return v, true
	}
}

// asNumber coerces scalars and single-element arrays to a number.
func asNumber(v value.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if arr, ok := v.Arr(); ok && arr.Size() == 1 {
		return arr.Data()[0], true
	}

	return 0, false
}
