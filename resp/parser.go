package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// DefaultMaxDepth is the aggregate nesting limit applied by Parse. Deeply
// nested input costs one stack frame per level, so the limit keeps
// adversarial payloads from exhausting the stack.
const DefaultMaxDepth = 64

const crlf = "\r\n"

var crlfBytes = []byte(crlf)

// Parse decodes the first complete RESP value at the front of data and
// returns it together with the unconsumed remainder. When data holds only a
// prefix of a value, the error wraps ErrIncompleteMessage and the caller
// should retry with a superset of the same bytes. Parse keeps no state
// between calls; each call re-reads from the start of the buffer.
//
// Bulk payloads in the returned value alias data. Callers that keep a value
// alive after reusing the buffer must copy.
func Parse(data []byte) (Value, []byte, error) {
	return ParseWithDepth(data, DefaultMaxDepth)
}

// ParseWithDepth is Parse with an explicit nesting limit, for callers that
// accept deeper structures or want a tighter bound on untrusted input.
func ParseWithDepth(data []byte, maxDepth int) (Value, []byte, error) {
	return parseValue(data, maxDepth)
}

// ParseFromBytes decodes exactly one RESP value spanning the whole of data.
func ParseFromBytes(data []byte) (Value, error) {
	v, rest, err := Parse(data)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, fmt.Errorf("%w: %d byte(s)", ErrTrailingBytes, len(rest))
	}
	return v, nil
}

// parseValue dispatches on the type-tag byte. Every decoder, including the
// aggregate ones, recurses back through here, so adding a tag is one case.
func parseValue(data []byte, depth int) (Value, []byte, error) {
	if len(data) == 0 {
		return Value{}, data, ErrIncompleteMessage
	}
	if depth <= 0 {
		return Value{}, data, ErrMaxDepthExceeded
	}

	tag, payload := data[0], data[1:]

	var (
		v    Value
		rest []byte
		err  error
	)
	switch tag {
	case TypeSimpleString:
		v, rest, err = parseSimpleString(payload)
	case TypeError:
		v, rest, err = parseError(payload)
	case TypeInteger:
		v, rest, err = parseInteger(payload)
	case TypeBulkString:
		v, rest, err = parseBulkString(payload)
	case TypeArray:
		v, rest, err = parseArray(payload, depth)
	case TypeNull:
		v, rest, err = parseNull(payload)
	case TypeBoolean:
		v, rest, err = parseBoolean(payload)
	case TypeDouble:
		v, rest, err = parseDouble(payload)
	case TypeBigNumber:
		v, rest, err = parseBigNumber(payload)
	case TypeBlobError:
		v, rest, err = parseBlobError(payload)
	case TypeVerbatimString:
		v, rest, err = parseVerbatimString(payload)
	case TypeMap:
		v, rest, err = parseMap(payload, depth)
	case TypeSet:
		v, rest, err = parseSet(payload, depth)
	case TypeAttribute:
		v, rest, err = parseAttribute(payload, depth)
	case TypePush:
		v, rest, err = parsePush(payload, depth)
	default:
		return Value{}, data, fmt.Errorf("%w: '%c' (0x%02x)", ErrUnknownType, tag, tag)
	}
	if err != nil {
		return Value{}, data, err
	}
	return v, rest, nil
}

// readLine splits data at the first CRLF, returning the bytes strictly
// before the terminator and the bytes strictly after it. An empty line is
// valid. No CRLF in sight means the line has not fully arrived yet.
func readLine(data []byte) (line, rest []byte, err error) {
	i := bytes.Index(data, crlfBytes)
	if i < 0 {
		return nil, data, ErrIncompleteMessage
	}
	return data[:i], data[i+2:], nil
}

// parseInt parses a signed base-10 integer field: one optional leading sign,
// digits only, 64-bit signed range. strconv enforces exactly those rules.
func parseInt(line []byte) (int64, error) {
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q overflows int64", ErrInvalidInteger, line)
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidInteger, line)
	}
	return n, nil
}

// parseCount reads a declared length or element count line. A -1 count
// denotes the null aggregate; RESP v3 additionally writes "?" for null
// maps, sets, attributes and pushes.
func parseCount(data []byte, allowNullMarker bool) (count int64, null bool, rest []byte, err error) {
	line, rest, err := readLine(data)
	if err != nil {
		return 0, false, data, err
	}
	if allowNullMarker && len(line) == 1 && line[0] == '?' {
		return 0, true, rest, nil
	}
	count, err = parseInt(line)
	if err != nil {
		return 0, false, data, err
	}
	if count == -1 {
		return 0, true, rest, nil
	}
	if count < 0 {
		return 0, false, data, fmt.Errorf("%w: %d", ErrInvalidLength, count)
	}
	return count, false, rest, nil
}

// readBlob consumes exactly n payload bytes plus the mandatory CRLF after
// them. The payload is a sub-slice of data: binary-safe, no scanning, no
// copy. Fewer than n+2 available bytes is incompleteness, not an error; the
// wrong two bytes after the payload is.
func readBlob(data []byte, n int64) (payload, rest []byte, err error) {
	if int64(len(data))-2 < n {
		return nil, data, ErrIncompleteMessage
	}
	if data[n] != '\r' || data[n+1] != '\n' {
		return nil, data, fmt.Errorf("%w: %q after %d-byte payload", ErrInvalidTerminator, data[n:n+2], n)
	}
	return data[:n:n], data[n+2:], nil
}

func parseSimpleString(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	return NewSimpleString(string(line)), rest, nil
}

func parseError(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	return NewError(string(line)), rest, nil
}

func parseInteger(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	n, err := parseInt(line)
	if err != nil {
		return Value{}, data, err
	}
	return NewInteger(n), rest, nil
}

func parseBulkString(data []byte) (Value, []byte, error) {
	n, null, rest, err := parseCount(data, false)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewBulkString(nil), rest, nil
	}
	payload, rest, err := readBlob(rest, n)
	if err != nil {
		return Value{}, data, err
	}
	return NewBulkString(payload), rest, nil
}

func parseArray(data []byte, depth int) (Value, []byte, error) {
	count, null, rest, err := parseCount(data, false)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewArray(nil), rest, nil
	}
	elems, rest, err := parseElements(rest, count, depth)
	if err != nil {
		return Value{}, data, err
	}
	return NewArray(elems), rest, nil
}

func parseNull(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	if len(line) != 0 {
		return Value{}, data, fmt.Errorf("%w: %q after null tag", ErrInvalidSyntax, line)
	}
	return NewNull(), rest, nil
}

func parseBoolean(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	if len(line) != 1 || (line[0] != 't' && line[0] != 'f') {
		return Value{}, data, fmt.Errorf("%w: boolean %q", ErrInvalidSyntax, line)
	}
	return NewBoolean(line[0] == 't'), rest, nil
}

func parseDouble(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	// ParseFloat already accepts the protocol's inf, +inf, -inf and nan
	// spellings.
	d, err := strconv.ParseFloat(string(line), 64)
	if err != nil {
		return Value{}, data, fmt.Errorf("%w: double %q", ErrInvalidSyntax, line)
	}
	return NewDouble(d), rest, nil
}

func parseBigNumber(data []byte) (Value, []byte, error) {
	line, rest, err := readLine(data)
	if err != nil {
		return Value{}, data, err
	}
	digits := line
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return Value{}, data, fmt.Errorf("%w: empty big number", ErrInvalidInteger)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return Value{}, data, fmt.Errorf("%w: big number %q", ErrInvalidInteger, line)
		}
	}
	return NewBigNumber(string(line)), rest, nil
}

func parseBlobError(data []byte) (Value, []byte, error) {
	n, null, rest, err := parseCount(data, false)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		// Unlike bulk strings, blob errors have no null form.
		return Value{}, data, fmt.Errorf("%w: -1", ErrInvalidLength)
	}
	payload, rest, err := readBlob(rest, n)
	if err != nil {
		return Value{}, data, err
	}
	return NewBlobError(payload), rest, nil
}

func parseVerbatimString(data []byte) (Value, []byte, error) {
	n, null, rest, err := parseCount(data, false)
	if err != nil {
		return Value{}, data, err
	}
	// The declared length covers the "enc:" prefix, so it can never be
	// shorter than those four bytes.
	if null || n < 4 {
		return Value{}, data, fmt.Errorf("%w: verbatim string length", ErrInvalidLength)
	}
	payload, rest, err := readBlob(rest, n)
	if err != nil {
		return Value{}, data, err
	}
	if payload[3] != ':' {
		return Value{}, data, fmt.Errorf("%w: missing ':' after encoding", ErrInvalidFormat)
	}
	return NewVerbatimString(string(payload[:3]), string(payload[4:])), rest, nil
}

func parseMap(data []byte, depth int) (Value, []byte, error) {
	count, null, rest, err := parseCount(data, true)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewMap(nil), rest, nil
	}
	items, rest, err := parseMapItems(rest, count, depth)
	if err != nil {
		return Value{}, data, err
	}
	return NewMap(items), rest, nil
}

func parseSet(data []byte, depth int) (Value, []byte, error) {
	count, null, rest, err := parseCount(data, true)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewSet(nil), rest, nil
	}
	elems, rest, err := parseElements(rest, count, depth)
	if err != nil {
		return Value{}, data, err
	}
	return NewSet(elems), rest, nil
}

func parseAttribute(data []byte, depth int) (Value, []byte, error) {
	count, null, rest, err := parseCount(data, true)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewAttribute(nil), rest, nil
	}
	items, rest, err := parseMapItems(rest, count, depth)
	if err != nil {
		return Value{}, data, err
	}
	return NewAttribute(items), rest, nil
}

func parsePush(data []byte, depth int) (Value, []byte, error) {
	count, null, rest, err := parseCount(data, true)
	if err != nil {
		return Value{}, data, err
	}
	if null {
		return NewPush(nil), rest, nil
	}
	elems, rest, err := parseElements(rest, count, depth)
	if err != nil {
		return Value{}, data, err
	}
	return NewPush(elems), rest, nil
}

// parseElements decodes count consecutive values. All-or-nothing: the first
// incomplete or failed element discards the collection, and the caller
// re-parses from the original start once more bytes arrive.
func parseElements(data []byte, count int64, depth int) ([]Value, []byte, error) {
	elems := make([]Value, 0, capHint(count))
	rest := data
	for i := int64(0); i < count; i++ {
		var (
			v   Value
			err error
		)
		v, rest, err = parseValue(rest, depth-1)
		if err != nil {
			return nil, data, err
		}
		elems = append(elems, v)
	}
	return elems, rest, nil
}

// parseMapItems decodes count key/value pairs, so 2*count values in wire
// order.
func parseMapItems(data []byte, count int64, depth int) ([]MapItem, []byte, error) {
	items := make([]MapItem, 0, capHint(count))
	rest := data
	for i := int64(0); i < count; i++ {
		key, r, err := parseValue(rest, depth-1)
		if err != nil {
			return nil, data, err
		}
		val, r, err := parseValue(r, depth-1)
		if err != nil {
			return nil, data, err
		}
		items = append(items, MapItem{Key: key, Value: val})
		rest = r
	}
	return items, rest, nil
}

// capHint bounds the initial allocation for a declared element count. The
// count is attacker-controlled and may claim far more elements than the
// buffer could hold.
func capHint(count int64) int {
	const max = 1024
	if count > max {
		return max
	}
	return int(count)
}
