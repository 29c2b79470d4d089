package tensor

import "fmt"

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return r
}

// Full creates a tensor filled with the given value, converted to dtype.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	r := Zeros(shape, dtype, device)
	fill(r, value)
	return r
}

func fill(r *RawTensor, value float64) {
	switch r.DType() {
	case Float32:
		data := r.AsFloat32()
		v := float32(value)
		for i := range data {
			data[i] = v
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int32:
		data := r.AsInt32()
		v := int32(value)
		for i := range data {
			data[i] = v
		}
	case Int64:
		data := r.AsInt64()
		v := int64(value)
		for i := range data {
			data[i] = v
		}
	case Uint8:
		data := r.AsUint8()
		v := uint8(value)
		for i := range data {
			data[i] = v
		}
	case Bool:
		data := r.AsBool()
		v := value != 0
		for i := range data {
			data[i] = v
		}
	default:
		panic(fmt.Sprintf("full: unsupported dtype %s", r.DType()))
	}
}

// FromFloat32s creates a Float32 tensor from a slice. The data is copied.
func FromFloat32s(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat32(), data)
	return r, nil
}

// FromFloat64s creates a Float64 tensor from a slice. The data is copied.
func FromFloat64s(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Float64, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat64(), data)
	return r, nil
}

// FromInt32s creates an Int32 tensor from a slice. The data is copied.
func FromInt32s(data []int32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Int32, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsInt32(), data)
	return r, nil
}

// FromInt64s creates an Int64 tensor from a slice. The data is copied.
func FromInt64s(data []int64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Int64, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsInt64(), data)
	return r, nil
}

// FromBools creates a Bool tensor from a slice. The data is copied.
func FromBools(data []bool, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Bool, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsBool(), data)
	return r, nil
}

// Arange creates a 1-D Int64 tensor with values start, start+step, ...
// strictly below stop. Step must be positive.
func Arange(start, stop, step int64, device Device) *RawTensor {
	if step <= 0 {
		panic(fmt.Sprintf("arange: step must be positive, got %d", step))
	}
	n := 0
	if stop > start {
		n = int((stop - start + step - 1) / step)
	}
	r := Zeros(Shape{n}, Int64, device)
	data := r.AsInt64()
	v := start
	for i := range data {
		data[i] = v
		v += step
	}
	return r
}

// Eye creates an n-by-n identity matrix of the given dtype.
func Eye(n int, dtype DataType, device Device) *RawTensor {
	r := Zeros(Shape{n, n}, dtype, device)
	for i := 0; i < n; i++ {
		switch dtype {
		case Float32:
			r.AsFloat32()[i*n+i] = 1
		case Float64:
			r.AsFloat64()[i*n+i] = 1
		case Int32:
			r.AsInt32()[i*n+i] = 1
		case Int64:
			r.AsInt64()[i*n+i] = 1
		case Uint8:
			r.AsUint8()[i*n+i] = 1
		case Bool:
			r.AsBool()[i*n+i] = true
		default:
			panic(fmt.Sprintf("eye: unsupported dtype %s", dtype))
		}
	}
	return r
}
