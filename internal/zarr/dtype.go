package zarr

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies the numeric class of an array element.
type Kind uint8

// Element kinds supported for pixel data. Zarr dtypes outside this closed
// set (strings, booleans, complex, structured) are rejected at open time.
const (
	KindInt   Kind = iota // signed integer
	KindUint              // unsigned integer
	KindFloat             // IEEE 754 floating-point
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	}
	return "unknown"
}

// DataType is the tagged description of an array's element type: numeric
// kind, element width in bytes, and the byte order the store holds it in.
type DataType struct {
	Kind         Kind
	Size         int
	LittleEndian bool
}

// ParseDataType parses a Zarr v2 dtype string such as "<u2", ">f4" or "|i1".
func ParseDataType(s string) (DataType, error) {
	if len(s) != 3 {
		return DataType{}, fmt.Errorf("unsupported dtype %q", s)
	}
	var dt DataType
	switch s[0] {
	case '<', '|':
		dt.LittleEndian = true
	case '>':
		dt.LittleEndian = false
	default:
		return DataType{}, fmt.Errorf("unsupported byte order in dtype %q", s)
	}
	switch s[1] {
	case 'i':
		dt.Kind = KindInt
	case 'u':
		dt.Kind = KindUint
	case 'f':
		dt.Kind = KindFloat
	default:
		return DataType{}, fmt.Errorf("unsupported element kind in dtype %q", s)
	}
	switch s[2] {
	case '1':
		dt.Size = 1
	case '2':
		dt.Size = 2
	case '4':
		dt.Size = 4
	case '8':
		dt.Size = 8
	default:
		return DataType{}, fmt.Errorf("unsupported element size in dtype %q", s)
	}
	if dt.Kind == KindFloat && dt.Size < 4 {
		return DataType{}, fmt.Errorf("unsupported float width in dtype %q", s)
	}
	if dt.Size == 1 {
		// Byte order is meaningless for single-byte elements.
		dt.LittleEndian = false
	}
	return dt, nil
}

// Signed reports whether the element type is a signed integer.
func (dt DataType) Signed() bool {
	return dt.Kind == KindInt
}

// String renders the dtype back in Zarr notation.
func (dt DataType) String() string {
	order := byte('>')
	if dt.Size == 1 {
		order = '|'
	} else if dt.LittleEndian {
		order = '<'
	}
	kind := byte('i')
	switch dt.Kind {
	case KindUint:
		kind = 'u'
	case KindFloat:
		kind = 'f'
	}
	return fmt.Sprintf("%c%c%d", order, kind, dt.Size)
}

// ToBigEndian converts buf, a packed sequence of stored-order elements,
// to big-endian in place.
func (dt DataType) ToBigEndian(buf []byte) {
	if !dt.LittleEndian || dt.Size == 1 {
		return
	}
	for off := 0; off+dt.Size <= len(buf); off += dt.Size {
		e := buf[off : off+dt.Size]
		for i, j := 0, dt.Size-1; i < j; i, j = i+1, j-1 {
			e[i], e[j] = e[j], e[i]
		}
	}
}

// PutValue encodes v as one stored-order element at the start of buf.
// Used to materialize fill values for absent chunks.
func (dt DataType) PutValue(buf []byte, v float64) {
	var bits uint64
	switch dt.Kind {
	case KindFloat:
		if dt.Size == 4 {
			bits = uint64(math.Float32bits(float32(v)))
		} else {
			bits = math.Float64bits(v)
		}
	default:
		bits = uint64(int64(v))
	}
	var order binary.ByteOrder = binary.BigEndian
	if dt.LittleEndian {
		order = binary.LittleEndian
	}
	switch dt.Size {
	case 1:
		buf[0] = byte(bits)
	case 2:
		order.PutUint16(buf, uint16(bits))
	case 4:
		order.PutUint32(buf, uint32(bits))
	case 8:
		order.PutUint64(buf, bits)
	}
}
