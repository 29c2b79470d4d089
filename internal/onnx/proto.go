package onnx

// ONNX protobuf data structures (hand-written).

// TypeProto describes the type of a graph value.
type TypeProto struct {
	TensorType *TensorTypeProto // Tensor type (the only variant carried here)
	Denotation string           // Type-level semantic denotation
}

// TensorTypeProto describes tensor shape and element type.
type TensorTypeProto struct {
	ElemType int32             // Element data type
	Shape    *TensorShapeProto // Tensor shape
}

// TensorShapeProto describes tensor dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto // Dimensions
}

// DimensionProto describes a single dimension.
type DimensionProto struct {
	DimValue   int64  // Static dimension value (e.g., 224 for image size)
	DimParam   string // Dynamic dimension name (e.g., "batch_size")
	Denotation string // Per-dimension semantic denotation
}

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined = 0
	TensorProtoFloat     = 1  // float32
	TensorProtoUint8     = 2  // uint8
	TensorProtoInt8      = 3  // int8
	TensorProtoUint16    = 4  // uint16
	TensorProtoInt16     = 5  // int16
	TensorProtoInt32     = 6  // int32
	TensorProtoInt64     = 7  // int64
	TensorProtoString    = 8  // string
	TensorProtoBool      = 9  // bool
	TensorProtoFloat16   = 10 // float16
	TensorProtoDouble    = 11 // float64
	TensorProtoUint32    = 12 // uint32
	TensorProtoUint64    = 13 // uint64
)
