package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Cast converts the tensor to a different data type. Integer-to-integer
// casts go through int64 so no precision is lost; everything else goes
// through float64.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, x.Device())
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}

	n := x.NumElements()
	if isIntegral(x.DType()) && isIntegral(dtype) {
		for i := 0; i < n; i++ {
			storeInt(result, i, loadInt(x, i))
		}
	} else {
		for i := 0; i < n; i++ {
			storeFloat(result, i, loadFloat(x, i))
		}
	}

	return result
}

func isIntegral(dt tensor.DataType) bool {
	return dt == tensor.Int32 || dt == tensor.Int64 || dt == tensor.Uint8 || dt == tensor.Bool
}

func loadInt(x *tensor.RawTensor, i int) int64 {
	switch x.DType() {
	case tensor.Int32:
		return int64(x.AsInt32()[i])
	case tensor.Int64:
		return x.AsInt64()[i]
	case tensor.Uint8:
		return int64(x.AsUint8()[i])
	case tensor.Bool:
		if x.AsBool()[i] {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("cast: non-integral dtype %s", x.DType()))
	}
}

func storeInt(x *tensor.RawTensor, i int, v int64) {
	switch x.DType() {
	case tensor.Int32:
		x.AsInt32()[i] = int32(v)
	case tensor.Int64:
		x.AsInt64()[i] = v
	case tensor.Uint8:
		x.AsUint8()[i] = uint8(v)
	case tensor.Bool:
		x.AsBool()[i] = v != 0
	default:
		panic(fmt.Sprintf("cast: non-integral dtype %s", x.DType()))
	}
}

func loadFloat(x *tensor.RawTensor, i int) float64 {
	switch x.DType() {
	case tensor.Float32:
		return float64(x.AsFloat32()[i])
	case tensor.Float64:
		return x.AsFloat64()[i]
	case tensor.Int32:
		return float64(x.AsInt32()[i])
	case tensor.Int64:
		return float64(x.AsInt64()[i])
	case tensor.Uint8:
		return float64(x.AsUint8()[i])
	case tensor.Bool:
		if x.AsBool()[i] {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("cast: unsupported dtype %s", x.DType()))
	}
}

func storeFloat(x *tensor.RawTensor, i int, v float64) {
	switch x.DType() {
	case tensor.Float32:
		x.AsFloat32()[i] = float32(v)
	case tensor.Float64:
		x.AsFloat64()[i] = v
	case tensor.Int32:
		x.AsInt32()[i] = int32(v)
	case tensor.Int64:
		x.AsInt64()[i] = int64(v)
	case tensor.Uint8:
		x.AsUint8()[i] = uint8(v)
	case tensor.Bool:
		x.AsBool()[i] = v != 0
	default:
		panic(fmt.Sprintf("cast: unsupported dtype %s", x.DType()))
	}
}
