// Package cpu implements the reference CPU array engine for the Axon VM.
package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// CPUBackend implements tensor.Backend with plain Go loops.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y },
		func(x, y int32) int32 { return x + y },
		func(x, y int64) int64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y },
		func(x, y int32) int32 { return x - y },
		func(x, y int64) int64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y int32) int32 { return x * y },
		func(x, y int64) int64 { return x * y })
}

// Div performs element-wise division with broadcasting.
// Integer division truncates; division by zero panics for integer dtypes
// and yields Inf/NaN for floating dtypes.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y },
		func(x, y int32) int32 { return x / y },
		func(x, y int64) int64 { return x / y })
}

// Maximum computes the element-wise maximum with broadcasting.
func (cpu *CPUBackend) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binaryOp("maximum", a, b,
		func(x, y float32) float32 { return max(x, y) },
		func(x, y float64) float64 { return max(x, y) },
		func(x, y int32) int32 { return max(x, y) },
		func(x, y int64) int64 { return max(x, y) })
}

// binaryOp dispatches an element-wise binary operation over the supported
// dtypes. Both operands must live on the same device and share a dtype.
func binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
	i32 func(x, y int32) int32,
	i64 func(x, y int64) int64,
) *tensor.RawTensor {
	if a.Device() != b.Device() {
		panic(fmt.Sprintf("%s: cross-device operands (%s vs %s)", name, a.Device(), b.Device()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch (%s vs %s)", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), a.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		applyBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), f32)
	case tensor.Float64:
		applyBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), f64)
	case tensor.Int32:
		applyBinary(result.AsInt32(), a.AsInt32(), b.AsInt32(), outShape, a.Shape(), b.Shape(), i32)
	case tensor.Int64:
		applyBinary(result.AsInt64(), a.AsInt64(), b.AsInt64(), outShape, a.Shape(), b.Shape(), i64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// applyBinary evaluates f over broadcast operands into dst.
func applyBinary[T numeric](dst, a, b []T, outShape, aShape, bShape tensor.Shape, f func(x, y T) T) {
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = f(a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	for i := range dst {
		dst[i] = f(a[flatIndex(i, outStrides, aStrides)], b[flatIndex(i, outStrides, bStrides)])
	}
}

// broadcastStrides computes strides for broadcasting inShape to outShape.
// Dimensions of size 1 (or missing on the left) get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// flatIndex maps a flat output index to a flat source index using
// broadcast-adjusted source strides.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		idx += coord * inStrides[i]
	}
	return idx
}
