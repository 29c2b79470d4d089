package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Equal compares element-wise with broadcasting, producing a Bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return compareOp("equal", a, b,
		func(x, y float32) bool { return x == y },
		func(x, y float64) bool { return x == y },
		func(x, y int32) bool { return x == y },
		func(x, y int64) bool { return x == y })
}

// Greater computes a > b element-wise with broadcasting, producing a Bool
// tensor.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return compareOp("greater", a, b,
		func(x, y float32) bool { return x > y },
		func(x, y float64) bool { return x > y },
		func(x, y int32) bool { return x > y },
		func(x, y int64) bool { return x > y })
}

// LogicalNot computes element-wise logical negation, producing a Bool
// tensor. Numeric inputs are treated as true when non-zero.
func (cpu *CPUBackend) LogicalNot(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), tensor.Bool, x.Device())
	if err != nil {
		panic(fmt.Sprintf("not: %v", err))
	}
	dst := result.AsBool()

	switch x.DType() {
	case tensor.Bool:
		for i, v := range x.AsBool() {
			dst[i] = !v
		}
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			dst[i] = v == 0
		}
	case tensor.Float64:
		for i, v := range x.AsFloat64() {
			dst[i] = v == 0
		}
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			dst[i] = v == 0
		}
	case tensor.Int64:
		for i, v := range x.AsInt64() {
			dst[i] = v == 0
		}
	default:
		panic(fmt.Sprintf("not: unsupported dtype %s", x.DType()))
	}

	return result
}

// compareOp dispatches an element-wise comparison over the numeric dtypes.
func compareOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) bool,
	f64 func(x, y float64) bool,
	i32 func(x, y int32) bool,
	i64 func(x, y int64) bool,
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

	result, err := tensor.NewRaw(outShape, tensor.Bool, a.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		applyCompare(result.AsBool(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), f32)
	case tensor.Float64:
		applyCompare(result.AsBool(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), f64)
	case tensor.Int32:
		applyCompare(result.AsBool(), a.AsInt32(), b.AsInt32(), outShape, a.Shape(), b.Shape(), i32)
	case tensor.Int64:
		applyCompare(result.AsBool(), a.AsInt64(), b.AsInt64(), outShape, a.Shape(), b.Shape(), i64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

func applyCompare[T numeric](dst []bool, a, b []T, outShape, aShape, bShape tensor.Shape, f func(x, y T) bool) {
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
