package resp

import (
	"errors"
	"fmt"
	"io"
)

const readChunkSize = 4096

// Reader decodes RESP values from a byte stream. It accumulates chunks from
// the underlying reader and re-runs the buffer parser until a complete value
// is available, which is the intended incremental use of Parse.
type Reader struct {
	r        io.Reader
	buf      []byte
	maxDepth int
}

// NewReader creates a streaming RESP reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth changes the nesting limit applied to subsequent reads.
func (r *Reader) SetMaxDepth(maxDepth int) {
	r.maxDepth = maxDepth
}

// ReadValue returns the next complete value from the stream. It blocks on
// the underlying reader until enough bytes have arrived. An EOF in the
// middle of a value surfaces as io.ErrUnexpectedEOF.
//
// Returned bulk payloads alias the reader's buffer; they stay intact across
// later reads because the buffer is only ever appended to, never compacted.
func (r *Reader) ReadValue() (Value, error) {
	for {
		if len(r.buf) > 0 {
			v, rest, err := ParseWithDepth(r.buf, r.maxDepth)
			if err == nil {
				r.buf = rest
				return v, nil
			}
			if !errors.Is(err, ErrIncompleteMessage) {
				return Value{}, err
			}
		}
		if err := r.fill(); err != nil {
			return Value{}, err
		}
	}
}

// ReadCommand reads the next value and requires it to be a command-shaped
// array. The elements come back in wire order, name first.
func (r *Reader) ReadCommand() ([]Value, error) {
	v, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	elems, err := v.ArrayValue()
	if err != nil {
		return nil, fmt.Errorf("%w: command must be an array", ErrUnexpectedType)
	}
	return elems, nil
}

// fill appends the next chunk from the underlying reader.
func (r *Reader) fill() error {
	if len(r.buf) == 0 {
		// Drop the old backing array so values handed out earlier keep
		// their bytes.
		r.buf = nil
	}
	chunk := make([]byte, readChunkSize)
	n, err := r.r.Read(chunk)
	if n > 0 {
		r.buf = append(r.buf, chunk[:n]...)
		return nil
	}
	if err != nil {
		if err == io.EOF && len(r.buf) > 0 {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Writer encodes RESP values onto a byte stream, flushing after every value
// so each reply leaves the buffer at a message boundary.
type Writer struct {
	s *Serializer
}

// NewWriter creates a streaming RESP writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{s: NewSerializer(w)}
}

// WriteValue writes one value and flushes.
func (w *Writer) WriteValue(v Value) error {
	if err := w.s.Serialize(v); err != nil {
		return err
	}
	return w.s.Flush()
}

// WriteSimpleString writes a simple string reply.
func (w *Writer) WriteSimpleString(s string) error {
	return w.WriteValue(NewSimpleString(s))
}

// WriteError writes an error reply.
func (w *Writer) WriteError(msg string) error {
	return w.WriteValue(NewError(msg))
}

// WriteInteger writes an integer reply.
func (w *Writer) WriteInteger(n int64) error {
	return w.WriteValue(NewInteger(n))
}

// WriteBulkString writes a bulk string reply. nil writes the null bulk
// string.
func (w *Writer) WriteBulkString(data []byte) error {
	return w.WriteValue(NewBulkString(data))
}

// WriteArray writes an array reply.
func (w *Writer) WriteArray(values []Value) error {
	return w.WriteValue(NewArray(values))
}

// WriteNull writes the RESP v3 null reply.
func (w *Writer) WriteNull() error {
	return w.WriteValue(NewNull())
}

// WriteOK writes the canonical +OK reply.
func (w *Writer) WriteOK() error {
	return w.WriteSimpleString("OK")
}

// WriteCommand writes a Redis-style command as an array of bulk strings.
func (w *Writer) WriteCommand(cmd string, args ...string) error {
	values := make([]Value, 1+len(args))
	values[0] = NewBulkStringString(cmd)
	for i, arg := range args {
		values[i+1] = NewBulkStringString(arg)
	}
	return w.WriteArray(values)
}
