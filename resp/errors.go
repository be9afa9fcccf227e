package resp

import (
	"errors"
)

// Errors reported by the parser and the serializer. Decode failures wrap one
// of these sentinels, so callers classify with errors.Is.
var (
	// ErrIncompleteMessage means the buffer holds a valid prefix of some
	// larger message. It is the one recoverable outcome: retry with a
	// superset of the same bytes once more input has arrived.
	ErrIncompleteMessage = errors.New("resp: incomplete message")

	// ErrUnknownType means the leading byte is not a recognized type tag.
	ErrUnknownType = errors.New("resp: unknown type")

	// ErrInvalidInteger means an integer or length field is not a valid
	// signed decimal, or overflows the signed 64-bit range.
	ErrInvalidInteger = errors.New("resp: invalid integer")

	// ErrInvalidLength means a declared length or element count is
	// negative without being the -1 null marker.
	ErrInvalidLength = errors.New("resp: invalid length")

	// ErrInvalidTerminator means the two bytes after a length-prefixed
	// payload are not CRLF.
	ErrInvalidTerminator = errors.New("resp: invalid terminator")

	// ErrInvalidSyntax covers framing violations with no more specific
	// class, such as a boolean byte other than 't' or 'f'.
	ErrInvalidSyntax = errors.New("resp: invalid syntax")

	// ErrInvalidFormat means a verbatim string payload is missing its
	// three-letter encoding prefix and colon.
	ErrInvalidFormat = errors.New("resp: invalid format")

	// ErrMaxDepthExceeded means aggregate nesting went past the
	// configured recursion limit.
	ErrMaxDepthExceeded = errors.New("resp: max nesting depth exceeded")

	// ErrTrailingBytes is returned by ParseFromBytes when input continues
	// past the first complete value.
	ErrTrailingBytes = errors.New("resp: trailing bytes after value")

	// ErrUnexpectedType is returned by typed accessors when the value
	// holds a different variant.
	ErrUnexpectedType = errors.New("resp: unexpected type")

	// ErrNil is returned by typed accessors on null values.
	ErrNil = errors.New("resp: nil value")
)
