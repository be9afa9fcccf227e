// Package resp implements the Redis Serialization Protocol (RESP), the wire
// format spoken between Redis-compatible clients and servers. It covers the
// RESP2 primitives as well as the RESP3 extensions (nulls, booleans, doubles,
// big numbers, blob errors, verbatim strings, maps, sets, attributes and
// push messages).
package resp

// RESP type-tag bytes. Every encoded value starts with exactly one of these.
const (
	// RESP v2 types
	TypeSimpleString = '+'
	TypeError        = '-'
	TypeInteger      = ':'
	TypeBulkString   = '$'
	TypeArray        = '*'

	// RESP v3 types
	TypeNull           = '_'
	TypeDouble         = ','
	TypeBoolean        = '#'
	TypeBlobError      = '!'
	TypeVerbatimString = '='
	TypeMap            = '%'
	TypeSet            = '~'
	TypeAttribute      = '|'
	TypePush           = '>'
	TypeBigNumber      = '('
)

// DataType represents the type of a RESP value.
type DataType byte

// MapItem is a single key/value pair of a RESP Map or Attribute. Pairs keep
// their wire order; keys may be any value type.
type MapItem struct {
	Key   Value
	Value Value
}

// Value represents one RESP protocol value. It is a tagged union: Type
// selects the variant and only the fields that variant uses are meaningful.
type Value struct {
	Type   DataType
	String string    // SimpleString, Error, VerbatimString content
	Int    int64     // Integer
	Bulk   []byte    // BulkString, BlobError payload
	Array  []Value   // Array, Set, Push elements
	Map    []MapItem // Map, Attribute pairs
	Double float64   // Double
	Bool   bool      // Boolean
	BigNum string    // BigNumber digits, sign included
	IsNull bool      // null bulk string, array, map, set, push or Null
	Format string    // VerbatimString encoding, e.g. "txt" or "mkd"
}

// NewSimpleString creates a simple string value.
func NewSimpleString(s string) Value {
	return Value{
		Type:   DataType(TypeSimpleString),
		String: s,
	}
}

// NewError creates an error value. The message travels as data; it is not a
// decode failure.
func NewError(s string) Value {
	return Value{
		Type:   DataType(TypeError),
		String: s,
	}
}

// NewInteger creates an integer value.
func NewInteger(i int64) Value {
	return Value{
		Type: DataType(TypeInteger),
		Int:  i,
	}
}

// NewBulkString creates a bulk string value. A nil slice produces the null
// bulk string; an empty non-nil slice produces the empty bulk string.
func NewBulkString(b []byte) Value {
	if b == nil {
		return Value{
			Type:   DataType(TypeBulkString),
			IsNull: true,
		}
	}
	return Value{
		Type: DataType(TypeBulkString),
		Bulk: b,
	}
}

// NewBulkStringString creates a bulk string value from a string.
func NewBulkStringString(s string) Value {
	return NewBulkString([]byte(s))
}

// NewArray creates an array value. A nil slice produces the null array.
func NewArray(values []Value) Value {
	if values == nil {
		return Value{
			Type:   DataType(TypeArray),
			IsNull: true,
		}
	}
	return Value{
		Type:  DataType(TypeArray),
		Array: values,
	}
}

// NewNull creates the RESP v3 null value.
func NewNull() Value {
	return Value{
		Type:   DataType(TypeNull),
		IsNull: true,
	}
}

// NewDouble creates a double value (RESP v3).
func NewDouble(d float64) Value {
	return Value{
		Type:   DataType(TypeDouble),
		Double: d,
	}
}

// NewBoolean creates a boolean value (RESP v3).
func NewBoolean(b bool) Value {
	return Value{
		Type: DataType(TypeBoolean),
		Bool: b,
	}
}

// NewBlobError creates a blob error value (RESP v3).
func NewBlobError(b []byte) Value {
	return Value{
		Type: DataType(TypeBlobError),
		Bulk: b,
	}
}

// NewBlobErrorString creates a blob error value from a string (RESP v3).
func NewBlobErrorString(s string) Value {
	return NewBlobError([]byte(s))
}

// NewVerbatimString creates a verbatim string value (RESP v3). The format is
// the three-letter encoding hint, "txt" or "mkd".
func NewVerbatimString(format, s string) Value {
	return Value{
		Type:   DataType(TypeVerbatimString),
		String: s,
		Format: format,
	}
}

// NewMap creates a map value (RESP v3). A nil slice produces the null map.
func NewMap(items []MapItem) Value {
	if items == nil {
		return Value{
			Type:   DataType(TypeMap),
			IsNull: true,
		}
	}
	return Value{
		Type: DataType(TypeMap),
		Map:  items,
	}
}

// NewSet creates a set value (RESP v3). Elements keep their wire order;
// uniqueness is the producer's concern, not enforced here.
func NewSet(values []Value) Value {
	if values == nil {
		return Value{
			Type:   DataType(TypeSet),
			IsNull: true,
		}
	}
	return Value{
		Type:  DataType(TypeSet),
		Array: values,
	}
}

// NewAttribute creates an attribute value (RESP v3).
func NewAttribute(items []MapItem) Value {
	if items == nil {
		return Value{
			Type:   DataType(TypeAttribute),
			IsNull: true,
		}
	}
	return Value{
		Type: DataType(TypeAttribute),
		Map:  items,
	}
}

// NewPush creates a push value (RESP v3).
func NewPush(values []Value) Value {
	if values == nil {
		return Value{
			Type:   DataType(TypePush),
			IsNull: true,
		}
	}
	return Value{
		Type:  DataType(TypePush),
		Array: values,
	}
}

// NewBigNumber creates a big number value (RESP v3). The digits travel as
// text; an optional leading sign is kept.
func NewBigNumber(s string) Value {
	return Value{
		Type:   DataType(TypeBigNumber),
		BigNum: s,
	}
}

// IsNil reports whether the value is one of the null variants.
func (v Value) IsNil() bool {
	return v.IsNull
}

// StringValue returns the textual content of any string-like value.
func (v Value) StringValue() (string, error) {
	switch v.Type {
	case DataType(TypeSimpleString), DataType(TypeError), DataType(TypeVerbatimString):
		return v.String, nil
	case DataType(TypeBulkString), DataType(TypeBlobError):
		if v.IsNull {
			return "", ErrNil
		}
		return string(v.Bulk), nil
	case DataType(TypeBigNumber):
		return v.BigNum, nil
	default:
		return "", ErrUnexpectedType
	}
}

// IntValue returns the integer payload.
func (v Value) IntValue() (int64, error) {
	if v.Type == DataType(TypeInteger) {
		return v.Int, nil
	}
	return 0, ErrUnexpectedType
}

// DoubleValue returns the double payload (RESP v3).
func (v Value) DoubleValue() (float64, error) {
	if v.Type == DataType(TypeDouble) {
		return v.Double, nil
	}
	return 0, ErrUnexpectedType
}

// BoolValue returns the boolean payload (RESP v3).
func (v Value) BoolValue() (bool, error) {
	if v.Type == DataType(TypeBoolean) {
		return v.Bool, nil
	}
	return false, ErrUnexpectedType
}

// BulkValue returns the bulk string payload.
func (v Value) BulkValue() ([]byte, error) {
	if v.Type == DataType(TypeBulkString) {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Bulk, nil
	}
	return nil, ErrUnexpectedType
}

// ArrayValue returns the elements of an array or push value.
func (v Value) ArrayValue() ([]Value, error) {
	if v.Type == DataType(TypeArray) || v.Type == DataType(TypePush) {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Array, nil
	}
	return nil, ErrUnexpectedType
}

// MapValue returns the pairs of a map or attribute value (RESP v3).
func (v Value) MapValue() ([]MapItem, error) {
	if v.Type == DataType(TypeMap) || v.Type == DataType(TypeAttribute) {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Map, nil
	}
	return nil, ErrUnexpectedType
}

// SetValue returns the elements of a set value (RESP v3).
func (v Value) SetValue() ([]Value, error) {
	if v.Type == DataType(TypeSet) {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Array, nil
	}
	return nil, ErrUnexpectedType
}

// PushValue returns the elements of a push value (RESP v3).
func (v Value) PushValue() ([]Value, error) {
	if v.Type == DataType(TypePush) {
		if v.IsNull {
			return nil, ErrNil
		}
		return v.Array, nil
	}
	return nil, ErrUnexpectedType
}

// BigNumberValue returns the big number digits (RESP v3).
func (v Value) BigNumberValue() (string, error) {
	if v.Type == DataType(TypeBigNumber) {
		return v.BigNum, nil
	}
	return "", ErrUnexpectedType
}

// VerbatimStringValue returns the encoding hint and content of a verbatim
// string (RESP v3).
func (v Value) VerbatimStringValue() (format, content string, err error) {
	if v.Type == DataType(TypeVerbatimString) {
		return v.Format, v.String, nil
	}
	return "", "", ErrUnexpectedType
}

// StringMap converts a map value whose keys are all string-like into a Go
// map. Later duplicate keys overwrite earlier ones.
func (v Value) StringMap() (map[string]Value, error) {
	items, err := v.MapValue()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(items))
	for _, item := range items {
		key, err := item.Key.StringValue()
		if err != nil {
			return nil, err
		}
		m[key] = item.Value
	}
	return m, nil
}
