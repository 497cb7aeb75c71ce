// Package ndim provides a row-major n-dimensional float64 array.
//
// Converter output carries numeric blocks of arbitrary rank whose sample axis
// may sit in any dimension. This package supplies the minimal shape algebra
// the channel views need to line those blocks up: shape inspection,
// transposition, moving an axis to the last position, and row-major
// flattening.
//
// Arrays store their elements in a flat row-major (C-order) slice with
// explicit strides, so reshaping is free and permutations are single-pass
// copies.
package ndim

import (
	"fmt"
	"slices"
)

// Array is an n-dimensional array of float64 values in row-major order.
//
// The zero value is an empty 1-dimensional array. Arrays share their backing
// slice with the data passed to New; treat an Array as immutable once it is
// handed to a view.
type Array struct {
	shape []int
	data  []float64
}

// New creates an Array with the given shape over data.
//
// The product of the shape dimensions must equal len(data). Every dimension
// must be non-negative. The data slice is used directly, not copied.
//
// Returns:
//   - *Array: The created array.
//   - error: If the shape does not describe len(data) elements.
func New(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", d, shape)
		}
		size *= d
	}
	if size != len(data) {
		return nil, fmt.Errorf("shape %v describes %d elements, data has %d", shape, size, len(data))
	}

	return &Array{shape: slices.Clone(shape), data: data}, nil
}

// FromSlice wraps a flat slice as a 1-dimensional array without copying.
func FromSlice(data []float64) *Array {
	return &Array{shape: []int{len(data)}, data: data}
}

// Scalar wraps a single value as a 0-dimensional array.
func Scalar(v float64) *Array {
	return &Array{shape: []int{}, data: []float64{v}}
}

// Empty returns an empty 1-dimensional array.
func Empty() *Array {
	return &Array{shape: []int{0}, data: nil}
}

// NDim returns the number of dimensions.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Size returns the total number of elements.
func (a *Array) Size() int {
	return len(a.data)
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Dim returns the size of dimension i.
func (a *Array) Dim(i int) int {
	return a.shape[i]
}

// Data returns the underlying row-major element slice. The slice is shared
// with the array; callers other than the owning container must not mutate it.
func (a *Array) Data() []float64 {
	return a.data
}

// At returns the element at the given multi-index. Panics on out-of-range
// indices, mirroring slice indexing.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.offset(idx)]
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndim: %d indices for %d-dimensional array", len(idx), len(a.shape)))
	}

	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("ndim: index %d out of range for dimension %d (size %d)", i, d, a.shape[d]))
		}
		off = off*a.shape[d] + i
	}

	return off
}

// Flatten returns a copy of the elements in row-major order.
func (a *Array) Flatten() []float64 {
	return slices.Clone(a.data)
}

// Reshape returns a view of the same elements under a new shape.
//
// The new shape must describe exactly Size() elements. The backing slice is
// shared, not copied.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	return New(shape, a.data)
}

// Transpose2D returns the transpose of a 2-dimensional array as a new array.
//
// Returns an error if the array is not 2-dimensional.
func (a *Array) Transpose2D() (*Array, error) {
	if len(a.shape) != 2 {
		return nil, fmt.Errorf("transpose requires a 2-dimensional array, got %d dimensions", len(a.shape))
	}

	return a.Permute(1, 0)
}

// MoveAxisLast returns a new array with dimension axis moved to the last
// position and all other dimensions kept in order.
//
// This is the reshape primitive for blocks whose sample axis is not already
// the fastest-varying dimension: after the move, a row-major flatten yields
// sample-major ordering.
func (a *Array) MoveAxisLast(axis int) (*Array, error) {
	nd := len(a.shape)
	if axis < 0 || axis >= nd {
		return nil, fmt.Errorf("axis %d out of range for %d-dimensional array", axis, nd)
	}

	perm := make([]int, 0, nd)
	for d := 0; d < nd; d++ {
		if d != axis {
			perm = append(perm, d)
		}
	}
	perm = append(perm, axis)

	return a.Permute(perm...)
}

// Permute returns a new array with dimensions reordered by perm, where
// perm[i] names the source dimension that becomes dimension i.
//
// perm must be a permutation of 0..NDim()-1. The result owns a fresh backing
// slice.
func (a *Array) Permute(perm ...int) (*Array, error) {
	nd := len(a.shape)
	if len(perm) != nd {
		return nil, fmt.Errorf("permutation length %d does not match %d dimensions", len(perm), nd)
	}
	seen := make([]bool, nd)
	for _, p := range perm {
		if p < 0 || p >= nd || seen[p] {
			return nil, fmt.Errorf("invalid permutation %v for %d dimensions", perm, nd)
		}
		seen[p] = true
	}

	srcStrides := rowMajorStrides(a.shape)
	newShape := make([]int, nd)
	newStrides := make([]int, nd)
	for i, p := range perm {
		newShape[i] = a.shape[p]
		newStrides[i] = srcStrides[p]
	}

	out := make([]float64, len(a.data))
	if len(a.data) == 0 || nd == 0 {
		copy(out, a.data)
		return &Array{shape: newShape, data: out}, nil
	}

	// Walk the output in row-major order, stepping a multi-index odometer
	// through the source via the permuted strides.
	counter := make([]int, nd)
	src := 0
	for i := range out {
		out[i] = a.data[src]
		for d := nd - 1; d >= 0; d-- {
			counter[d]++
			src += newStrides[d]
			if counter[d] < newShape[d] {
				break
			}
			counter[d] = 0
			src -= newShape[d] * newStrides[d]
		}
	}

	return &Array{shape: newShape, data: out}, nil
}

// rowMajorStrides computes element strides for a row-major layout.
func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = acc
		acc *= shape[d]
	}

	return strides
}
