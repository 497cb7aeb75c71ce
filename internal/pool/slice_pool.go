package pool

import "sync"

// float64SlicePool backs the correction engine's per-cycle interpolation
// scratch, which is requested once per cycle at identical size.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves and resizes a float64 slice from the pool.
//
// The returned slice has length size; contents are unspecified and must be
// overwritten by the caller. The cleanup function must be called (typically
// with defer) to return the slice to the pool, after which the slice must
// not be used.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}
