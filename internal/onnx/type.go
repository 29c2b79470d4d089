package onnx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/axonvm/axon/internal/tensor"
)

// Dim is a single dimension of a Type: either a concrete size or a symbolic
// parameter name, with an optional semantic denotation.
type Dim struct {
	Size       int64  // Concrete size; meaningful only when Param is empty
	Param      string // Symbolic name (e.g., "batch_size")
	Denotation string // Semantic tag (e.g., "DATA_CHANNEL")
}

// Symbolic reports whether the dimension is a named parameter rather than a
// concrete size.
func (d Dim) Symbolic() bool { return d.Param != "" }

// Type is the compile-time descriptor for a graph value: element dtype plus
// per-dimension size-or-param information. It converts losslessly to and from
// the ONNX TypeProto message.
type Type struct {
	DType      tensor.DataType
	Dims       []Dim
	Denotation string
}

// ParseType decodes a Type from TypeProto wire bytes.
func ParseType(data []byte) (Type, error) {
	m, err := ParseTypeProto(data)
	if err != nil {
		return Type{}, err
	}
	return TypeFromProto(m)
}

// Marshal encodes the Type as TypeProto wire bytes.
func (t Type) Marshal() []byte {
	return MarshalTypeProto(t.ToProto())
}

// TypeFromProto converts a decoded TypeProto into a Type.
func TypeFromProto(m *TypeProto) (Type, error) {
	if m.TensorType == nil {
		return Type{}, fmt.Errorf("type has no tensor_type")
	}
	dt, err := dtypeFromCode(m.TensorType.ElemType)
	if err != nil {
		return Type{}, err
	}
	t := Type{DType: dt, Denotation: m.Denotation}
	if m.TensorType.Shape != nil {
		t.Dims = make([]Dim, len(m.TensorType.Shape.Dims))
		for i, d := range m.TensorType.Shape.Dims {
			t.Dims[i] = Dim{Size: d.DimValue, Param: d.DimParam, Denotation: d.Denotation}
		}
	}
	return t, nil
}

// ToProto converts the Type into a TypeProto ready for encoding.
func (t Type) ToProto() *TypeProto {
	shape := &TensorShapeProto{Dims: make([]DimensionProto, len(t.Dims))}
	for i, d := range t.Dims {
		shape.Dims[i] = DimensionProto{DimValue: d.Size, DimParam: d.Param, Denotation: d.Denotation}
		if d.Param != "" {
			shape.Dims[i].DimValue = 0
		}
	}
	return &TypeProto{
		TensorType: &TensorTypeProto{ElemType: dtypeCode(t.DType), Shape: shape},
		Denotation: t.Denotation,
	}
}

// Shape returns the concrete tensor shape, or false if any dimension is
// symbolic.
func (t Type) Shape() (tensor.Shape, bool) {
	dims := make(tensor.Shape, len(t.Dims))
	for i, d := range t.Dims {
		if d.Symbolic() {
			return nil, false
		}
		dims[i] = int(d.Size)
	}
	return dims, true
}

// String renders the type as dtype[dim,dim,...], e.g. "float32[batch,3,224,224]".
func (t Type) String() string {
	var sb strings.Builder
	sb.WriteString(t.DType.String())
	sb.WriteByte('[')
	for i, d := range t.Dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		if d.Symbolic() {
			sb.WriteString(d.Param)
		} else {
			sb.WriteString(strconv.FormatInt(d.Size, 10))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// dtypeCode maps a tensor dtype to its ONNX TensorProto data type code.
func dtypeCode(dt tensor.DataType) int32 {
	switch dt {
	case tensor.Float32:
		return TensorProtoFloat
	case tensor.Float64:
		return TensorProtoDouble
	case tensor.Int32:
		return TensorProtoInt32
	case tensor.Int64:
		return TensorProtoInt64
	case tensor.Uint8:
		return TensorProtoUint8
	case tensor.Bool:
		return TensorProtoBool
	default:
		return TensorProtoUndefined
	}
}

// dtypeFromCode maps an ONNX TensorProto data type code to a tensor dtype.
func dtypeFromCode(code int32) (tensor.DataType, error) {
	switch code {
	case TensorProtoFloat:
		return tensor.Float32, nil
	case TensorProtoDouble:
		return tensor.Float64, nil
	case TensorProtoInt32:
		return tensor.Int32, nil
	case TensorProtoInt64:
		return tensor.Int64, nil
	case TensorProtoUint8:
		return tensor.Uint8, nil
	case TensorProtoBool:
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unsupported element type: %d", code)
	}
}
