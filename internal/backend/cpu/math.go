package cpu

import (
	"fmt"
	"math"

	"github.com/axonvm/axon/internal/tensor"
)

// Neg computes element-wise negation.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("neg", x,
		func(v float32) float32 { return -v },
		func(v float64) float64 { return -v },
		func(v int32) int32 { return -v },
		func(v int64) int64 { return -v })
}

// MaximumScalar computes the element-wise maximum of x and a scalar.
func (cpu *CPUBackend) MaximumScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return unaryOp("maximum", x,
		func(v float32) float32 { return max(v, float32(s)) },
		func(v float64) float64 { return max(v, s) },
		func(v int32) int32 { return max(v, int32(s)) },
		func(v int64) int64 { return max(v, int64(s)) })
}

// Reciprocal computes element-wise 1/x. Floating dtypes only.
func (cpu *CPUBackend) Reciprocal(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryFloatOp("reciprocal", x, func(v float64) float64 { return 1 / v })
}

// Exp computes element-wise exponential. Floating dtypes only.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryFloatOp("exp", x, math.Exp)
}

// Log computes the element-wise natural logarithm. Floating dtypes only.
// Non-positive inputs produce -Inf or NaN rather than an error; callers
// composing log (e.g. pow) depend on this.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryFloatOp("log", x, math.Log)
}

// Sqrt computes the element-wise square root. Floating dtypes only.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryFloatOp("sqrt", x, math.Sqrt)
}

// unaryOp dispatches an element-wise unary operation over all numeric dtypes.
func unaryOp(
	name string,
	x *tensor.RawTensor,
	f32 func(v float32) float32,
	f64 func(v float64) float64,
	i32 func(v int32) int32,
	i64 func(v int64) int64,
) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = f32(v)
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f64(v)
		}
	case tensor.Int32:
		src, dst := x.AsInt32(), result.AsInt32()
		for i, v := range src {
			dst[i] = i32(v)
		}
	case tensor.Int64:
		src, dst := x.AsInt64(), result.AsInt64()
		for i, v := range src {
			dst[i] = i64(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

// unaryFloatOp dispatches an element-wise unary operation over the floating
// dtypes only.
func unaryFloatOp(name string, x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}

	return result
}
