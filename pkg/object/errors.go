package object

import "errors"

var (
	// ErrMalformedObject reports a structural violation while decoding an
	// object body (missing delimiter, truncated field).
	ErrMalformedObject = errors.New("malformed object")

	// ErrCorruptObject reports an envelope whose declared length does not
	// match the payload.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrUnknownType reports a type tag outside the four known kinds.
	ErrUnknownType = errors.New("unknown object type")
)
