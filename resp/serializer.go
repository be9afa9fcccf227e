package resp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Serializer encodes RESP values onto an io.Writer. Output is buffered;
// call Flush when a message boundary is reached.
type Serializer struct {
	writer *bufio.Writer
}

// NewSerializer creates a RESP serializer writing to w.
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{
		writer: bufio.NewWriter(w),
	}
}

// Serialize writes the wire encoding of v.
func (s *Serializer) Serialize(v Value) error {
	switch v.Type {
	// RESP v2 types
	case DataType(TypeSimpleString):
		return s.writeLine(TypeSimpleString, v.String)
	case DataType(TypeError):
		return s.writeLine(TypeError, v.String)
	case DataType(TypeInteger):
		return s.writeLine(TypeInteger, strconv.FormatInt(v.Int, 10))
	case DataType(TypeBulkString):
		if v.IsNull {
			return s.writeLine(TypeBulkString, "-1")
		}
		return s.writeBlob(TypeBulkString, v.Bulk)
	case DataType(TypeArray):
		if v.IsNull {
			return s.writeLine(TypeArray, "-1")
		}
		return s.writeElements(TypeArray, v.Array)

	// RESP v3 types
	case DataType(TypeNull):
		return s.writeLine(TypeNull, "")
	case DataType(TypeDouble):
		return s.writeLine(TypeDouble, formatDouble(v.Double))
	case DataType(TypeBoolean):
		if v.Bool {
			return s.writeLine(TypeBoolean, "t")
		}
		return s.writeLine(TypeBoolean, "f")
	case DataType(TypeBlobError):
		return s.writeBlob(TypeBlobError, v.Bulk)
	case DataType(TypeVerbatimString):
		return s.writeBlob(TypeVerbatimString, []byte(v.Format+":"+v.String))
	case DataType(TypeMap):
		if v.IsNull {
			return s.writeLine(TypeMap, "?")
		}
		return s.writeMapItems(TypeMap, v.Map)
	case DataType(TypeSet):
		if v.IsNull {
			return s.writeLine(TypeSet, "?")
		}
		return s.writeElements(TypeSet, v.Array)
	case DataType(TypeAttribute):
		if v.IsNull {
			return s.writeLine(TypeAttribute, "?")
		}
		return s.writeMapItems(TypeAttribute, v.Map)
	case DataType(TypePush):
		if v.IsNull {
			return s.writeLine(TypePush, "?")
		}
		return s.writeElements(TypePush, v.Array)
	case DataType(TypeBigNumber):
		return s.writeLine(TypeBigNumber, v.BigNum)
	default:
		return fmt.Errorf("%w: %v", ErrUnexpectedType, v.Type)
	}
}

// Flush flushes buffered output to the underlying writer.
func (s *Serializer) Flush() error {
	return s.writer.Flush()
}

// writeLine writes a tag byte, a body and the CRLF terminator.
func (s *Serializer) writeLine(tag byte, body string) error {
	if err := s.writer.WriteByte(tag); err != nil {
		return err
	}
	if _, err := s.writer.WriteString(body); err != nil {
		return err
	}
	_, err := s.writer.WriteString(crlf)
	return err
}

// writeBlob writes a length-prefixed binary-safe payload.
func (s *Serializer) writeBlob(tag byte, data []byte) error {
	if err := s.writeLine(tag, strconv.Itoa(len(data))); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	_, err := s.writer.WriteString(crlf)
	return err
}

// writeElements writes a count line followed by each element's encoding.
func (s *Serializer) writeElements(tag byte, elems []Value) error {
	if err := s.writeLine(tag, strconv.Itoa(len(elems))); err != nil {
		return err
	}
	for _, v := range elems {
		if err := s.Serialize(v); err != nil {
			return err
		}
	}
	return nil
}

// writeMapItems writes a pair-count line followed by alternating keys and
// values.
func (s *Serializer) writeMapItems(tag byte, items []MapItem) error {
	if err := s.writeLine(tag, strconv.Itoa(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.Serialize(item.Key); err != nil {
			return err
		}
		if err := s.Serialize(item.Value); err != nil {
			return err
		}
	}
	return nil
}

// formatDouble renders a double the way the protocol spells it, including
// the inf and nan special values.
func formatDouble(d float64) string {
	switch {
	case math.IsInf(d, 1):
		return "inf"
	case math.IsInf(d, -1):
		return "-inf"
	case math.IsNaN(d):
		return "nan"
	default:
		return strconv.FormatFloat(d, 'f', -1, 64)
	}
}

// SerializeToBytes encodes a single value to a byte slice.
func SerializeToBytes(v Value) ([]byte, error) {
	var buf bytes.Buffer
	s := NewSerializer(&buf)
	if err := s.Serialize(v); err != nil {
		return nil, err
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeCommand encodes a Redis-style command as an array of bulk
// strings.
func SerializeCommand(cmd string, args ...string) ([]byte, error) {
	values := make([]Value, 1+len(args))
	values[0] = NewBulkStringString(cmd)
	for i, arg := range args {
		values[i+1] = NewBulkStringString(arg)
	}
	return SerializeToBytes(NewArray(values))
}
