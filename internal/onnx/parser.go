package onnx

import (
	"errors"
	"fmt"
	"io"
)

// ParseTypeProto parses a TypeProto message from bytes.
func ParseTypeProto(data []byte) (*TypeProto, error) {
	p := &parser{data: data, pos: 0}
	m := &TypeProto{}
	if err := p.readTypeProto(m); err != nil {
		return nil, fmt.Errorf("failed to parse type: %w", err)
	}
	return m, nil
}

// parser implements a minimal protobuf wire format decoder.
type parser struct {
	data []byte
	pos  int
}

// Protobuf wire types.
const (
	wireVarint = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	wire64Bit  = 1 // fixed64, sfixed64, double
	wireBytes  = 2 // string, bytes, embedded messages, packed repeated fields
	wire32Bit  = 5 // fixed32, sfixed32, float
)

// readTypeProto reads TypeProto message.
func (p *parser) readTypeProto(m *TypeProto) error {
	for p.pos < len(p.data) {
		fieldNum, wireType, err := p.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		switch fieldNum {
		case 1: // tensor_type
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			sub := &parser{data: data, pos: 0}
			m.TensorType = &TensorTypeProto{}
			if err2 := sub.readTensorTypeProto(m.TensorType); err2 != nil {
				return err2
			}
			continue
		case 6: // denotation
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			m.Denotation = string(data)
			continue
		default:
			err = p.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readTensorTypeProto reads TensorTypeProto message.
func (p *parser) readTensorTypeProto(m *TensorTypeProto) error {
	for p.pos < len(p.data) {
		fieldNum, wireType, err := p.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		switch fieldNum {
		case 1: // elem_type
			m.ElemType, err = p.readInt32()
		case 2: // shape
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			sub := &parser{data: data, pos: 0}
			m.Shape = &TensorShapeProto{}
			if err2 := sub.readTensorShapeProto(m.Shape); err2 != nil {
				return err2
			}
			continue
		default:
			err = p.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readTensorShapeProto reads TensorShapeProto message.
func (p *parser) readTensorShapeProto(m *TensorShapeProto) error {
	for p.pos < len(p.data) {
		fieldNum, wireType, err := p.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		switch fieldNum {
		case 1: // dim
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			sub := &parser{data: data, pos: 0}
			dim := DimensionProto{}
			if err2 := sub.readDimensionProto(&dim); err2 != nil {
				return err2
			}
			m.Dims = append(m.Dims, dim)
			continue
		default:
			err = p.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readDimensionProto reads DimensionProto message.
func (p *parser) readDimensionProto(m *DimensionProto) error {
	for p.pos < len(p.data) {
		fieldNum, wireType, err := p.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		switch fieldNum {
		case 1: // dim_value
			m.DimValue, err = p.readVarint()
		case 2: // dim_param
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			m.DimParam = string(data)
			continue
		case 3: // denotation
			data, err2 := p.readBytes()
			if err2 != nil {
				return err2
			}
			m.Denotation = string(data)
			continue
		default:
			err = p.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readTag reads a protobuf field tag.
func (p *parser) readTag() (fieldNum, wireType int, err error) {
	if p.pos >= len(p.data) {
		return 0, 0, io.EOF
	}
	tag, err := p.readVarint()
	if err != nil {
		return 0, 0, err
	}
	fieldNum = int(tag >> 3)
	wireType = int(tag & 0x7)
	return fieldNum, wireType, nil
}

// readVarint reads a varint-encoded int64.
func (p *parser) readVarint() (int64, error) {
	var result uint64
	var shift uint
	for {
		if p.pos >= len(p.data) {
			return 0, io.EOF
		}
		b := p.data[p.pos]
		p.pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("varint overflow")
		}
	}
	return int64(result), nil //nolint:gosec // G115: Protobuf varint fits in int64.
}

// readInt32 reads a varint-encoded int32.
func (p *parser) readInt32() (int32, error) {
	v, err := p.readVarint()
	if err != nil {
		return 0, err
	}
	return int32(v), nil //nolint:gosec // G115: Protobuf varint fits in int32.
}

// readBytes reads a length-delimited byte slice.
func (p *parser) readBytes() ([]byte, error) {
	length, err := p.readVarint()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.New("negative length")
	}
	end := p.pos + int(length)
	if end > len(p.data) {
		return nil, io.ErrUnexpectedEOF
	}
	result := p.data[p.pos:end]
	p.pos = end
	return result, nil
}

// skipField skips a field based on wire type.
func (p *parser) skipField(wireType int) error {
	switch wireType {
	case wireVarint:
		_, err := p.readVarint()
		return err
	case wire64Bit:
		if p.pos+8 > len(p.data) {
			return io.ErrUnexpectedEOF
		}
		p.pos += 8
		return nil
	case wireBytes:
		_, err := p.readBytes()
		return err
	case wire32Bit:
		if p.pos+4 > len(p.data) {
			return io.ErrUnexpectedEOF
		}
		p.pos += 4
		return nil
	default:
		return fmt.Errorf("unknown wire type: %d", wireType)
	}
}
