package onnx

// MarshalTypeProto encodes a TypeProto message to bytes.
//
// The encoding is canonical: fields are written in field-number order and
// unset fields are omitted, so decoding and re-encoding a message produced
// here yields identical bytes.
func MarshalTypeProto(m *TypeProto) []byte {
	w := &writer{}
	w.writeTypeProto(m)
	return w.buf
}

// writer implements a minimal protobuf wire format encoder.
type writer struct {
	buf []byte
}

func (w *writer) writeTypeProto(m *TypeProto) {
	if m.TensorType != nil {
		sub := &writer{}
		sub.writeTensorTypeProto(m.TensorType)
		w.writeBytesField(1, sub.buf)
	}
	if m.Denotation != "" {
		w.writeBytesField(6, []byte(m.Denotation))
	}
}

func (w *writer) writeTensorTypeProto(m *TensorTypeProto) {
	if m.ElemType != TensorProtoUndefined {
		w.writeTag(1, wireVarint)
		w.writeVarint(uint64(m.ElemType)) //nolint:gosec // G115: dtype codes are small non-negative enums.
	}
	if m.Shape != nil {
		sub := &writer{}
		sub.writeTensorShapeProto(m.Shape)
		w.writeBytesField(2, sub.buf)
	}
}

func (w *writer) writeTensorShapeProto(m *TensorShapeProto) {
	for i := range m.Dims {
		sub := &writer{}
		sub.writeDimensionProto(&m.Dims[i])
		w.writeBytesField(1, sub.buf)
	}
}

func (w *writer) writeDimensionProto(m *DimensionProto) {
	// dim_value and dim_param are a oneof: a symbolic dimension carries only
	// its parameter name, everything else carries the concrete size.
	if m.DimParam != "" {
		w.writeBytesField(2, []byte(m.DimParam))
	} else {
		w.writeTag(1, wireVarint)
		w.writeVarint(uint64(m.DimValue)) //nolint:gosec // G115: dimension sizes are non-negative.
	}
	if m.Denotation != "" {
		w.writeBytesField(3, []byte(m.Denotation))
	}
}

// writeTag writes a protobuf field tag.
func (w *writer) writeTag(fieldNum, wireType int) {
	w.writeVarint(uint64(fieldNum)<<3 | uint64(wireType)) //nolint:gosec // G115: field numbers are small positives.
}

// writeVarint writes a varint-encoded value.
func (w *writer) writeVarint(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// writeBytesField writes a length-delimited field.
func (w *writer) writeBytesField(fieldNum int, data []byte) {
	w.writeTag(fieldNum, wireBytes)
	w.writeVarint(uint64(len(data)))
	w.buf = append(w.buf, data...)
}
