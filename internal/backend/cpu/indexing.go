package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Slice extracts [start, end) ranges with stride 1 on every axis.
// Both starts and ends must have one entry per axis; ranges are clamped to
// the axis bounds the way Python slicing clamps them.
func (cpu *CPUBackend) Slice(x *tensor.RawTensor, starts, ends []int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if len(starts) != ndim || len(ends) != ndim {
		panic(fmt.Sprintf("slice: got %d starts and %d ends for %dD tensor", len(starts), len(ends), ndim))
	}

	lo := make([]int, ndim)
	outShape := make(tensor.Shape, ndim)
	for d := 0; d < ndim; d++ {
		s, e := starts[d], ends[d]
		if s < 0 {
			s += shape[d]
		}
		if e < 0 {
			e += shape[d]
		}
		s = min(max(s, 0), shape[d])
		e = min(max(e, s), shape[d])
		if e == s {
			panic(fmt.Sprintf("slice: empty range [%d,%d) on axis %d of %v", starts[d], ends[d], d, shape))
		}
		lo[d] = s
		outShape[d] = e - s
	}

	result, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("slice: %v", err))
	}

	srcStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	elem := x.DType().Size()
	dst, src := result.Data(), x.Data()
	for i := 0; i < result.NumElements(); i++ {
		rem := i
		j := 0
		for d := 0; d < ndim; d++ {
			coord := 0
			if outStrides[d] > 0 {
				coord = rem / outStrides[d]
				rem %= outStrides[d]
			}
			j += (coord + lo[d]) * srcStrides[d]
		}
		copy(dst[i*elem:(i+1)*elem], src[j*elem:(j+1)*elem])
	}

	return result
}

// Pad allocates a value-filled buffer of the padded shape and copies x into
// the interior offset by the per-axis "before" amounts.
func (cpu *CPUBackend) Pad(x *tensor.RawTensor, before, after []int, value float64) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if len(before) != ndim || len(after) != ndim {
		panic(fmt.Sprintf("pad: got %d before and %d after pads for %dD tensor", len(before), len(after), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for d := 0; d < ndim; d++ {
		if before[d] < 0 || after[d] < 0 {
			panic(fmt.Sprintf("pad: negative pad on axis %d", d))
		}
		outShape[d] = shape[d] + before[d] + after[d]
	}

	result := tensor.Full(outShape, value, x.DType(), x.Device())

	srcStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	elem := x.DType().Size()
	dst, src := result.Data(), x.Data()
	for i := 0; i < x.NumElements(); i++ {
		rem := i
		j := 0
		for d := 0; d < ndim; d++ {
			coord := 0
			if srcStrides[d] > 0 {
				coord = rem / srcStrides[d]
				rem %= srcStrides[d]
			}
			j += (coord + before[d]) * outStrides[d]
		}
		copy(dst[j*elem:(j+1)*elem], src[i*elem:(i+1)*elem])
	}

	return result
}

// Take gathers slices of x along an axis by integer index. The result shape
// is x.shape with the axis replaced by the index shape. Negative indices
// wrap once; out-of-range indices panic.
func (cpu *CPUBackend) Take(x *tensor.RawTensor, indices *tensor.RawTensor, axis int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("take: axis %d out of range for %dD tensor", axis, ndim))
	}

	idx := indexValues("take", indices)

	outShape := make(tensor.Shape, 0, ndim-1+len(indices.Shape()))
	outShape = append(outShape, shape[:axis]...)
	outShape = append(outShape, indices.Shape()...)
	outShape = append(outShape, shape[axis+1:]...)

	result, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("take: %v", err))
	}

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= shape[d]
	}
	dim := shape[axis]
	innerBytes := x.DType().Size()
	for d := axis + 1; d < ndim; d++ {
		innerBytes *= shape[d]
	}

	dst, src := result.Data(), x.Data()
	for o := 0; o < outer; o++ {
		for k, ix := range idx {
			if ix < 0 {
				ix += int64(dim)
			}
			if ix < 0 || ix >= int64(dim) {
				panic(fmt.Sprintf("take: index %d out of bounds for axis of size %d", idx[k], dim))
			}
			dstOff := (o*len(idx) + k) * innerBytes
			srcOff := (o*dim + int(ix)) * innerBytes
			copy(dst[dstOff:dstOff+innerBytes], src[srcOff:srcOff+innerBytes])
		}
	}

	return result
}

// ScatterAdd returns a copy of x with updates added at the given indices
// along an axis. The updates shape must be x.shape with the axis replaced
// by the index shape (the inverse of Take). Duplicate indices accumulate.
func (cpu *CPUBackend) ScatterAdd(x *tensor.RawTensor, indices *tensor.RawTensor, axis int, updates *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("scatteradd: axis %d out of range for %dD tensor", axis, ndim))
	}
	if updates.DType() != x.DType() {
		panic(fmt.Sprintf("scatteradd: dtype mismatch (%s vs %s)", updates.DType(), x.DType()))
	}

	wantShape := make(tensor.Shape, 0, ndim-1+len(indices.Shape()))
	wantShape = append(wantShape, shape[:axis]...)
	wantShape = append(wantShape, indices.Shape()...)
	wantShape = append(wantShape, shape[axis+1:]...)
	if !updates.Shape().Equal(wantShape) {
		panic(fmt.Sprintf("scatteradd: updates shape %v, expected %v", updates.Shape(), wantShape))
	}

	idx := indexValues("scatteradd", indices)
	result := x.Clone()

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= shape[d]
	}
	dim := shape[axis]
	inner := 1
	for d := axis + 1; d < ndim; d++ {
		inner *= shape[d]
	}

	switch x.DType() {
	case tensor.Float32:
		scatterAddKernel(result.AsFloat32(), updates.AsFloat32(), idx, outer, dim, inner)
	case tensor.Float64:
		scatterAddKernel(result.AsFloat64(), updates.AsFloat64(), idx, outer, dim, inner)
	case tensor.Int32:
		scatterAddKernel(result.AsInt32(), updates.AsInt32(), idx, outer, dim, inner)
	case tensor.Int64:
		scatterAddKernel(result.AsInt64(), updates.AsInt64(), idx, outer, dim, inner)
	default:
		panic(fmt.Sprintf("scatteradd: unsupported dtype %s", x.DType()))
	}

	return result
}

func scatterAddKernel[T numeric](dst, upd []T, idx []int64, outer, dim, inner int) {
	for o := 0; o < outer; o++ {
		for k, ix := range idx {
			if ix < 0 {
				ix += int64(dim)
			}
			if ix < 0 || ix >= int64(dim) {
				panic(fmt.Sprintf("scatteradd: index %d out of bounds for axis of size %d", idx[k], dim))
			}
			for i := 0; i < inner; i++ {
				dst[(o*dim+int(ix))*inner+i] += upd[(o*len(idx)+k)*inner+i]
			}
		}
	}
}

// indexValues reads an integer index tensor as a flat []int64.
func indexValues(name string, indices *tensor.RawTensor) []int64 {
	switch indices.DType() {
	case tensor.Int64:
		return indices.AsInt64()
	case tensor.Int32:
		src := indices.AsInt32()
		out := make([]int64, len(src))
		for i, v := range src {
			out[i] = int64(v)
		}
		return out
	default:
		panic(fmt.Sprintf("%s: index tensor must be int32 or int64, got %s", name, indices.DType()))
	}
}
