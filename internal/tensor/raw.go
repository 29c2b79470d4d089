package tensor

import (
	"fmt"
	"unsafe"
)

// Device represents the memory space a tensor lives in.
type Device int

// Supported devices. CPU is the default compute device. Host is pinned
// host-resident memory used for shapes, indices and other metadata arrays;
// an engine may refuse to mix the two in a single call.
const (
	CPU Device = iota
	Host
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case Host:
		return "Host"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a dtype-tagged byte
// buffer with a shape and row-major strides. A RawTensor is exclusively
// owned by whoever holds it; engines allocate a fresh RawTensor for every
// result and never alias a result to an input.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		data:   make([]byte, byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.data
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// WithShape returns a view of the tensor reinterpreted under a new shape
// with the same number of elements. The data buffer is shared.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v as %v (element count mismatch)", r.shape, shape)
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}, nil
}

// ScalarFloat returns the single element of a one-element tensor as float64.
// Panics if the tensor holds more than one element.
func (r *RawTensor) ScalarFloat() float64 {
	r.checkScalar()
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[0])
	case Float64:
		return r.AsFloat64()[0]
	case Int32:
		return float64(r.AsInt32()[0])
	case Int64:
		return float64(r.AsInt64()[0])
	case Uint8:
		return float64(r.data[0])
	case Bool:
		if r.AsBool()[0] {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("scalar: unsupported dtype %s", r.dtype))
	}
}

// ScalarInt returns the single element of a one-element tensor as int64.
// Panics if the tensor holds more than one element.
func (r *RawTensor) ScalarInt() int64 {
	r.checkScalar()
	switch r.dtype {
	case Float32:
		return int64(r.AsFloat32()[0])
	case Float64:
		return int64(r.AsFloat64()[0])
	case Int32:
		return int64(r.AsInt32()[0])
	case Int64:
		return r.AsInt64()[0]
	case Uint8:
		return int64(r.data[0])
	case Bool:
		if r.AsBool()[0] {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("scalar: unsupported dtype %s", r.dtype))
	}
}

// ScalarBool returns the single element of a one-element tensor as a bool.
// Non-zero numeric values are true. Panics if the tensor holds more than
// one element.
func (r *RawTensor) ScalarBool() bool {
	if r.dtype == Bool {
		r.checkScalar()
		return r.AsBool()[0]
	}
	return r.ScalarFloat() != 0
}

func (r *RawTensor) checkScalar() {
	if r.NumElements() != 1 {
		panic(fmt.Sprintf("scalar access on tensor with %d elements (shape %v)", r.NumElements(), r.shape))
	}
}

// String returns a human-readable representation of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", r.dtype, r.shape, r.device)
}
