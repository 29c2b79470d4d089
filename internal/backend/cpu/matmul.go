package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Dot performs a dot product. Supported rank combinations:
//
//	(M, K) @ (K, N) -> (M, N)
//	(K)    @ (K, N) -> (N)
//	(M, K) @ (K)    -> (M)
//	(K)    @ (K)    -> ()
//
// Uses a naive O(n³) loop; floating dtypes only.
func (cpu *CPUBackend) Dot(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("dot: dtype mismatch (%s vs %s)", a.DType(), b.DType()))
	}

	aShape := a.Shape()
	bShape := b.Shape()
	if len(aShape) < 1 || len(aShape) > 2 || len(bShape) < 1 || len(bShape) > 2 {
		panic(fmt.Sprintf("dot: unsupported ranks %dD @ %dD", len(aShape), len(bShape)))
	}

	// Promote vectors to matrices, drop the promoted axes afterwards.
	m, k := 1, aShape[len(aShape)-1]
	if len(aShape) == 2 {
		m = aShape[0]
	}
	kAlt, n := bShape[0], 1
	if len(bShape) == 2 {
		n = bShape[1]
	}
	if k != kAlt {
		panic(fmt.Sprintf("dot: shape mismatch %v @ %v", aShape, bShape))
	}

	outShape := tensor.Shape{}
	if len(aShape) == 2 {
		outShape = append(outShape, m)
	}
	if len(bShape) == 2 {
		outShape = append(outShape, n)
	}

	result, err := tensor.NewRaw(outShape, a.DType(), a.Device())
	if err != nil {
		panic(fmt.Sprintf("dot: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		dotKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		dotKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("dot: unsupported dtype %s", a.DType()))
	}

	return result
}

// dotKernel computes c[i,j] = sum_k a[i,k] * b[k,j].
func dotKernel[T numeric](c, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum T
			for l := 0; l < k; l++ {
				sum += a[i*k+l] * b[l*n+j]
			}
			c[i*n+j] = sum
		}
	}
}
