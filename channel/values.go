package channel

// Column is one column of a VALUES mapping. Channel columns are always
// numeric; parameter value columns may be text (timestamps).
type Column struct {
	nums  []float64
	texts []string
}

// NumericColumn creates a numeric column.
func NumericColumn(nums []float64) Column {
	return Column{nums: nums}
}

// TextColumn creates a text column.
func TextColumn(texts []string) Column {
	return Column{texts: texts}
}

// IsText reports whether the column holds text values.
func (c Column) IsText() bool {
	return c.texts != nil
}

// Len returns the number of entries in the column.
func (c Column) Len() int {
	if c.texts != nil {
		return len(c.texts)
	}

	return len(c.nums)
}

// Numbers returns the numeric entries, nil for text columns.
func (c Column) Numbers() []float64 {
	return c.nums
}

// Texts returns the text entries, nil for numeric columns.
func (c Column) Texts() []string {
	return c.texts
}

// Values is the tabular export of a channel or parameter: a synthesized
// axis column plus one or more data columns, keyed by name in insertion
// order. Channel values always contain the axis column under "CA".
type Values struct {
	keys []string
	cols map[string]Column
}

func newValues() *Values {
	return &Values{cols: make(map[string]Column)}
}

func (v *Values) add(key string, col Column) {
	if _, ok := v.cols[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.cols[key] = col
}

// Get returns the column for key and whether it exists.
func (v *Values) Get(key string) (Column, bool) {
	col, ok := v.cols[key]
	return col, ok
}

// Keys returns the column names in insertion order.
func (v *Values) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)

	return out
}

// Len returns the number of columns.
func (v *Values) Len() int {
	return len(v.keys)
}

// tile repeats the whole of src reps times: [a b] x 2 -> [a b a b].
func tile(src []float64, reps int) []float64 {
	if reps <= 0 || len(src) == 0 {
		return []float64{}
	}

	out := make([]float64, 0, len(src)*reps)
	for r := 0; r < reps; r++ {
		out = append(out, src...)
	}

	return out
}

// repeatEach repeats every element of src times in place:
// [a b] x 2 -> [a a b b].
func repeatEach(src []float64, times int) []float64 {
	if times <= 0 || len(src) == 0 {
		return []float64{}
	}

	out := make([]float64, 0, len(src)*times)
	for _, v := range src {
		for t := 0; t < times; t++ {
			out = append(out, v)
		}
	}

	return out
}

// resizeTo cycles src to exactly n elements, truncating or wrapping as
// needed.
func resizeTo(src []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = src[i%len(src)]
	}

	return out
}

// indexAxis returns 0..n-1 as a synthetic axis for blocks without one.
func indexAxis(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}
