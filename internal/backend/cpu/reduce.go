package cpu

import (
	"fmt"
	"math"

	"github.com/axonvm/axon/internal/tensor"
)

// ReduceSum sums over the given axis set. Empty axes reduce over all axes.
func (cpu *CPUBackend) ReduceSum(x *tensor.RawTensor, axes []int, keepdims bool) *tensor.RawTensor {
	return reduceOp("reducesum", x, axes, keepdims, reduceSum)
}

// ReduceMax takes the maximum over the given axis set. Empty axes reduce
// over all axes.
func (cpu *CPUBackend) ReduceMax(x *tensor.RawTensor, axes []int, keepdims bool) *tensor.RawTensor {
	return reduceOp("reducemax", x, axes, keepdims, reduceMax)
}

// ReduceMean averages over the given axis set. Empty axes reduce over all
// axes. Floating dtypes only.
func (cpu *CPUBackend) ReduceMean(x *tensor.RawTensor, axes []int, keepdims bool) *tensor.RawTensor {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("reducemean: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	reduced := normalizeAxes("reducemean", axes, len(x.Shape()))
	count := 1
	for d, r := range reduced {
		if r {
			count *= x.Shape()[d]
		}
	}

	sum := cpu.ReduceSum(x, axes, keepdims)
	switch sum.DType() {
	case tensor.Float32:
		data := sum.AsFloat32()
		for i := range data {
			data[i] /= float32(count)
		}
	case tensor.Float64:
		data := sum.AsFloat64()
		for i := range data {
			data[i] /= float64(count)
		}
	}
	return sum
}

// ArgMax returns Int64 indices of the maximum along axis; the axis is
// removed from the result shape.
func (cpu *CPUBackend) ArgMax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("argmax: axis %d out of range for %dD tensor", axis, ndim))
	}

	outShape := make(tensor.Shape, 0, ndim-1)
	for d := 0; d < ndim; d++ {
		if d != axis {
			outShape = append(outShape, shape[d])
		}
	}

	result, err := tensor.NewRaw(outShape, tensor.Int64, x.Device())
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

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
		argmaxKernel(result.AsInt64(), x.AsFloat32(), outer, dim, inner)
	case tensor.Float64:
		argmaxKernel(result.AsInt64(), x.AsFloat64(), outer, dim, inner)
	case tensor.Int32:
		argmaxKernel(result.AsInt64(), x.AsInt32(), outer, dim, inner)
	case tensor.Int64:
		argmaxKernel(result.AsInt64(), x.AsInt64(), outer, dim, inner)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func argmaxKernel[T numeric](dst []int64, src []T, outer, dim, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := src[o*dim*inner+i]
			bestIdx := int64(0)
			for d := 1; d < dim; d++ {
				v := src[(o*dim+d)*inner+i]
				if v > best {
					best = v
					bestIdx = int64(d)
				}
			}
			dst[o*inner+i] = bestIdx
		}
	}
}

type reduceKind int

const (
	reduceSum reduceKind = iota
	reduceMax
)

// reduceOp performs a reduction over the axis set in two passes: accumulate
// into a keepdims-shaped buffer, then drop the reduced axes if requested.
func reduceOp(name string, x *tensor.RawTensor, axes []int, keepdims bool, kind reduceKind) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	reduced := normalizeAxes(name, axes, ndim)

	keepShape := shape.Clone()
	outShape := make(tensor.Shape, 0, ndim)
	for d := 0; d < ndim; d++ {
		if reduced[d] {
			keepShape[d] = 1
		} else {
			outShape = append(outShape, shape[d])
		}
	}
	if keepdims {
		outShape = keepShape
	}

	result, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		reduceKernel(result.AsFloat32(), x.AsFloat32(), shape, reduced, kind, float32(math.Inf(-1)))
	case tensor.Float64:
		reduceKernel(result.AsFloat64(), x.AsFloat64(), shape, reduced, kind, math.Inf(-1))
	case tensor.Int32:
		reduceKernel(result.AsInt32(), x.AsInt32(), shape, reduced, kind, math.MinInt32)
	case tensor.Int64:
		reduceKernel(result.AsInt64(), x.AsInt64(), shape, reduced, kind, math.MinInt64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

func reduceKernel[T numeric](dst, src []T, shape tensor.Shape, reduced []bool, kind reduceKind, lowest T) {
	if kind == reduceMax {
		for i := range dst {
			dst[i] = lowest
		}
	}

	// Destination strides with reduced dimensions pinned to stride 0.
	dstStrides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		if reduced[d] {
			dstStrides[d] = 0
		} else {
			dstStrides[d] = stride
			stride *= shape[d]
		}
	}
	srcStrides := shape.ComputeStrides()

	for i := range src {
		j := flatIndex(i, srcStrides, dstStrides)
		if kind == reduceSum {
			dst[j] += src[i]
		} else if src[i] > dst[j] {
			dst[j] = src[i]
		}
	}
}

// normalizeAxes validates and normalizes an axis list into a per-dimension
// flag slice. An empty list selects every axis.
func normalizeAxes(name string, axes []int, ndim int) []bool {
	reduced := make([]bool, ndim)
	if len(axes) == 0 {
		for d := range reduced {
			reduced[d] = true
		}
		return reduced
	}
	for _, a := range axes {
		if a < 0 {
			a += ndim
		}
		if a < 0 || a >= ndim {
			panic(fmt.Sprintf("%s: axis %d out of range for %dD tensor", name, a, ndim))
		}
		if reduced[a] {
			panic(fmt.Sprintf("%s: duplicate axis %d", name, a))
		}
		reduced[a] = true
	}
	return reduced
}
