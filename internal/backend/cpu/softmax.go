package cpu

import (
	"fmt"
	"math"

	"github.com/axonvm/axon/internal/tensor"
)

// LogSoftmax computes log(softmax(x)) along the given axis using the
// numerically stable max-shifted log-sum-exp formulation.
func (cpu *CPUBackend) LogSoftmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		panic(fmt.Sprintf("logsoftmax: axis %d out of range for %dD tensor", axis, ndim))
	}

	result, err := tensor.NewRaw(shape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("logsoftmax: %v", err))
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
		logSoftmaxKernel(result.AsFloat32(), x.AsFloat32(), outer, dim, inner)
	case tensor.Float64:
		logSoftmaxKernel(result.AsFloat64(), x.AsFloat64(), outer, dim, inner)
	default:
		panic(fmt.Sprintf("logsoftmax: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

func logSoftmaxKernel[T ~float32 | ~float64](dst, src []T, outer, dim, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			m := src[o*dim*inner+i]
			for d := 1; d < dim; d++ {
				if v := src[(o*dim+d)*inner+i]; v > m {
					m = v
				}
			}

			var sum float64
			for d := 0; d < dim; d++ {
				sum += math.Exp(float64(src[(o*dim+d)*inner+i] - m))
			}
			lse := float64(m) + math.Log(sum)

			for d := 0; d < dim; d++ {
				idx := (o*dim+d)*inner + i
				dst[idx] = T(float64(src[idx]) - lse)
			}
		}
	}
}
