package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Reshape returns a tensor with the same data and a different shape.
// The element count must match exactly; `-1` solving happens in the VM's
// reshape kernel, not here.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if x.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			x.Shape(), newShape))
	}

	result, err := tensor.NewRaw(newShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	copy(result.Data(), x.Data())
	return result
}

// Transpose permutes the tensor's axes. A nil perm reverses them.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, perm []int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if len(perm) == 0 {
		perm = make([]int, ndim)
		for i := range perm {
			perm[i] = ndim - 1 - i
		}
	}
	if len(perm) != ndim {
		panic(fmt.Sprintf("transpose: perm length %d != ndim %d", len(perm), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range perm {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range perm {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	// Walk output positions, pulling from the permuted source index.
	srcStrides := shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range perm {
		permStrides[i] = srcStrides[ax]
	}
	outStrides := newShape.ComputeStrides()

	elem := x.DType().Size()
	dst, src := result.Data(), x.Data()
	for i := 0; i < result.NumElements(); i++ {
		j := flatIndex(i, outStrides, permStrides)
		copy(dst[i*elem:(i+1)*elem], src[j*elem:(j+1)*elem])
	}

	return result
}

// BroadcastTo broadcasts x to the target shape.
func (cpu *CPUBackend) BroadcastTo(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("broadcastto: cannot broadcast %v to %v", x.Shape(), shape))
	}

	result, rerr := tensor.NewRaw(shape, x.DType(), x.Device())
	if rerr != nil {
		panic(fmt.Sprintf("broadcastto: %v", rerr))
	}

	outStrides := shape.ComputeStrides()
	inStrides := broadcastStrides(x.Shape(), shape)
	elem := x.DType().Size()
	dst, src := result.Data(), x.Data()
	for i := 0; i < result.NumElements(); i++ {
		j := flatIndex(i, outStrides, inStrides)
		copy(dst[i*elem:(i+1)*elem], src[j*elem:(j+1)*elem])
	}

	return result
}

// Concat concatenates tensors along an axis. All inputs must share a dtype
// and agree on every dimension except the concatenation axis.
func (cpu *CPUBackend) Concat(xs []*tensor.RawTensor, axis int) *tensor.RawTensor {
	if len(xs) == 0 {
		panic("concat: at least one tensor required")
	}

	shape := xs[0].Shape()
	ndim := len(shape)
	dtype := xs[0].DType()

	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("concat: axis %d out of range for %dD tensor", axis, ndim))
	}

	totalDim := 0
	for i, t := range xs {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("concat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("concat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == axis {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("concat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[axis] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, xs[0].Device())
	if err != nil {
		panic(fmt.Sprintf("concat: %v", err))
	}

	// Row-major layout: copy [outer, dim, inner] blocks per input.
	outer := 1
	for d := 0; d < axis; d++ {
		outer *= shape[d]
	}
	innerBytes := dtype.Size()
	for d := axis + 1; d < ndim; d++ {
		innerBytes *= shape[d]
	}

	dst := result.Data()
	dstRowBytes := totalDim * innerBytes
	offset := 0
	for _, t := range xs {
		rowBytes := t.Shape()[axis] * innerBytes
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*dstRowBytes+offset:o*dstRowBytes+offset+rowBytes], src[o*rowBytes:(o+1)*rowBytes])
		}
		offset += rowBytes
	}

	return result
}

// Split splits x along an axis into segments of the given lengths.
func (cpu *CPUBackend) Split(x *tensor.RawTensor, lens []int, axis int) []*tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("split: axis %d out of range for %dD tensor", axis, ndim))
	}

	total := 0
	for i, l := range lens {
		if l <= 0 {
			panic(fmt.Sprintf("split: segment %d has non-positive length %d", i, l))
		}
		total += l
	}
	if total != shape[axis] {
		panic(fmt.Sprintf("split: segment lengths sum to %d, axis %d has size %d", total, axis, shape[axis]))
	}

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= shape[d]
	}
	innerBytes := x.DType().Size()
	for d := axis + 1; d < ndim; d++ {
		innerBytes *= shape[d]
	}

	src := x.Data()
	srcRowBytes := shape[axis] * innerBytes
	results := make([]*tensor.RawTensor, len(lens))
	offset := 0
	for i, l := range lens {
		segShape := shape.Clone()
		segShape[axis] = l
		seg, err := tensor.NewRaw(segShape, x.DType(), x.Device())
		if err != nil {
			panic(fmt.Sprintf("split: %v", err))
		}
		rowBytes := l * innerBytes
		dst := seg.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*rowBytes:(o+1)*rowBytes], src[o*srcRowBytes+offset:o*srcRowBytes+offset+rowBytes])
		}
		offset += rowBytes
		results[i] = seg
	}

	return results
}
